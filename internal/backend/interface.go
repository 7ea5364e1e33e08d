package backend

import (
	"context"

	"studyplan/internal/ports"
)

// Backend is everything the web server needs from a data backend.
type Backend interface {
	ports.CompletionStore
	ports.PlanStore
	ports.AchievementReader
	Ping(ctx context.Context) error
}

type CleanupFunc func() error

// BackendResult holds the created backend. Publisher is nil when completions
// are not announced to a worker.
type BackendResult struct {
	Backend   Backend
	Publisher ports.CompletionPublisher
	Cleanup   CleanupFunc
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
