package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"studyplan/internal/core"
	"studyplan/internal/ports"
)

// Ensure interface conformance
var (
	_ ports.CompletionStore    = (*Store)(nil)
	_ ports.PlanStore          = (*Store)(nil)
	_ ports.AchievementReader  = (*Store)(nil)
	_ ports.CompletionExporter = (*Exporter)(nil)

	_ ports.ExportedCompletionReader = (*Exporter)(nil)
)

type Store struct {
	mu           sync.Mutex
	completions  []core.Completion
	plans        []core.StudyPlan
	achievements []core.Achievement
	now          func() time.Time
}

func New(achievements []core.Achievement) *Store {
	return &Store{
		achievements: append([]core.Achievement(nil), achievements...),
		now:          time.Now,
	}
}

// NewSeeded returns a store holding the default achievement catalogue.
func NewSeeded() *Store {
	return New(core.DefaultAchievements())
}

// MarkCompleted stores the completion and returns a sequential id.
func (s *Store) MarkCompleted(_ context.Context, c core.Completion) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.completions {
		if existing.SessionID == c.SessionID && existing.Date.Equal(c.Date.Time) {
			return existing.ID, nil
		}
	}
	c.ID = int64(len(s.completions) + 1)
	if c.CompletedAt.IsZero() {
		c.CompletedAt = s.now()
	}
	s.completions = append(s.completions, c)
	return c.ID, nil
}

func (s *Store) ListCompletions(_ context.Context, year int, month int) ([]core.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Completion
	for _, c := range s.completions {
		if c.Date.Year() == year && c.Date.Month() == month {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetCompletion(_ context.Context, id int64) (core.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || id > int64(len(s.completions)) {
		return core.Completion{}, fmt.Errorf("completion %d: %w", id, ports.ErrNotFound)
	}
	return s.completions[id-1], nil
}

func (s *Store) SavePlan(_ context.Context, p core.StudyPlan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.plans = append(s.plans, p)
	return nil
}

func (s *Store) LatestPlan(_ context.Context) (core.StudyPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.plans) == 0 {
		return core.StudyPlan{}, fmt.Errorf("study plan: %w", ports.ErrNotFound)
	}
	return s.plans[len(s.plans)-1], nil
}

// ListAchievements returns achievements newest first.
func (s *Store) ListAchievements(_ context.Context) ([]core.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Achievement(nil), s.achievements...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EarnedOn.After(out[j].EarnedOn.Time)
	})
	return out, nil
}

// Ping always succeeds; the store lives in process memory.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Exporter collects exported completions in memory, standing in for a sheet.
type Exporter struct {
	mu   sync.Mutex
	rows []core.Completion
}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) ExportCompletion(_ context.Context, c core.Completion) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, c)
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// ListCompletions returns the exported rows dated in year/month (1-12).
func (e *Exporter) ListCompletions(_ context.Context, year int, month int) ([]core.Completion, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []core.Completion
	for _, c := range e.rows {
		if c.Date.Year() == year && c.Date.Month() == month {
			out = append(out, c)
		}
	}
	return out, nil
}

// Rows returns a copy of everything exported so far.
func (e *Exporter) Rows() []core.Completion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Completion(nil), e.rows...)
}
