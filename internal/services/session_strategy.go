// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for choosing where calendar sessions
// come from. Each strategy resolves to a core.SessionSource for the grid builder.

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"studyplan/internal/core"
	"studyplan/internal/ports"
)

// Built-in strategy names.
const (
	StrategyPattern = "pattern"
	StrategyPlan    = "plan"
)

// SessionStrategy resolves the session source used to fill a month grid.
type SessionStrategy interface {
	Source(ctx context.Context, plans ports.PlanStore) (core.SessionSource, error)
}

// PatternStrategy always yields the fixed divisibility pattern.
type PatternStrategy struct{}

func (PatternStrategy) Source(context.Context, ports.PlanStore) (core.SessionSource, error) {
	return core.PatternSessions{}, nil
}

// PlanStrategy schedules sessions from the latest stored study plan and falls
// back to the pattern while no plan exists.
type PlanStrategy struct{}

func (PlanStrategy) Source(ctx context.Context, plans ports.PlanStore) (core.SessionSource, error) {
	if plans == nil {
		return core.PatternSessions{}, nil
	}
	plan, err := plans.LatestPlan(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		slog.DebugContext(ctx, "No study plan stored, using pattern sessions")
		return core.PatternSessions{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest plan: %w", err)
	}
	return core.PlanSessions{Plan: plan}, nil
}

var (
	strategiesMu sync.RWMutex
	strategies   = map[string]SessionStrategy{
		StrategyPattern: PatternStrategy{},
		StrategyPlan:    PlanStrategy{},
	}
)

// GetSessionStrategy returns the strategy registered under name.
func GetSessionStrategy(name string) (SessionStrategy, error) {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	s, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown session strategy: %s", name)
	}
	return s, nil
}

// RegisterSessionStrategy adds or replaces a strategy.
func RegisterSessionStrategy(name string, s SessionStrategy) {
	strategiesMu.Lock()
	defer strategiesMu.Unlock()
	strategies[name] = s
}

// SessionStrategyNames lists the registered strategy names in order.
func SessionStrategyNames() []string {
	strategiesMu.RLock()
	defer strategiesMu.RUnlock()
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
