package adapters

import (
	"context"
	"errors"
	"fmt"

	"studyplan/internal/amqp"
	"studyplan/internal/storage"
)

// SQLiteAdapter joins the SQLite repository and the optional AMQP client behind
// one readiness check and one Close.
type SQLiteAdapter struct {
	*storage.SQLiteRepository
	amqp *amqp.Client
}

// NewSQLiteAdapter wraps repo. amqpClient may be nil.
func NewSQLiteAdapter(repo *storage.SQLiteRepository, amqpClient *amqp.Client) *SQLiteAdapter {
	return &SQLiteAdapter{
		SQLiteRepository: repo,
		amqp:             amqpClient,
	}
}

// Ping reports the database as unavailable before the broker, since requests
// cannot be served without it.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	if err := a.SQLiteRepository.Ping(ctx); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	if a.amqp != nil {
		if err := a.amqp.Ping(); err != nil {
			return fmt.Errorf("amqp: %w", err)
		}
	}
	return nil
}

// Close closes both storage and AMQP connections
func (a *SQLiteAdapter) Close() error {
	var errs []error
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if a.SQLiteRepository != nil {
		if err := a.SQLiteRepository.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
