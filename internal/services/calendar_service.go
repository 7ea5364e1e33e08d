package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"studyplan/internal/cache"
	"studyplan/internal/core"
	"studyplan/internal/ports"
)

// CalendarService builds month grids from the configured session strategy,
// overlays stored completions and caches the result.
type CalendarService struct {
	completions  ports.CompletionStore
	plans        ports.PlanStore
	strategyName string
	strategy     SessionStrategy
	grids        cache.Cache[[]core.DayCell]
	loc          *time.Location
	now          func() time.Time

	// generation guards the grid cache against grids built before an Invalidate.
	mu         sync.Mutex
	generation uint64
}

type CalendarOption func(*CalendarService)

// WithGridCache enables grid caching.
func WithGridCache(c cache.Cache[[]core.DayCell]) CalendarOption {
	return func(s *CalendarService) { s.grids = c }
}

// WithLocation sets the time zone used to decide which day is today.
func WithLocation(loc *time.Location) CalendarOption {
	return func(s *CalendarService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CalendarOption {
	return func(s *CalendarService) { s.now = now }
}

func NewCalendarService(completions ports.CompletionStore, plans ports.PlanStore, strategyName string, opts ...CalendarOption) (*CalendarService, error) {
	strategy, err := GetSessionStrategy(strategyName)
	if err != nil {
		return nil, err
	}
	s := &CalendarService{
		completions:  completions,
		plans:        plans,
		strategyName: strategyName,
		strategy:     strategy,
		loc:          time.Local,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Now returns the current time in the calendar's time zone.
func (s *CalendarService) Now() time.Time {
	return s.now().In(s.loc)
}

// Month returns the 42-cell grid for ref as seen on today.
// Returned cells are shared with the cache and must not be modified.
func (s *CalendarService) Month(ctx context.Context, ref core.MonthRef, today time.Time) ([]core.DayCell, error) {
	if _, err := core.DaysInMonth(ref.Year, ref.MonthIndex); err != nil {
		return nil, err
	}

	key := s.cacheKey(ref, today)
	if s.grids != nil {
		if cells, ok := s.grids.Get(key); ok {
			return cells, nil
		}
	}

	gen := s.currentGeneration()
	source, err := s.strategy.Source(ctx, s.plans)
	if err != nil {
		return nil, err
	}
	completions, err := s.completions.ListCompletions(ctx, ref.Year, ref.Month())
	if err != nil {
		return nil, fmt.Errorf("list completions for %s: %w", ref.Label(), err)
	}

	builder := core.GridBuilder{Sessions: core.NewCompletionOverlay(source, completions)}
	cells, err := builder.Build(ref.Year, ref.MonthIndex, today)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Built month grid",
		"month", ref.Label(),
		"strategy", s.strategyName,
		"completions", len(completions))

	s.storeGrid(gen, key, cells)
	return cells, nil
}

// Summary counts planned and completed sessions of the month.
func (s *CalendarService) Summary(ctx context.Context, ref core.MonthRef, today time.Time) (core.MonthSummary, error) {
	cells, err := s.Month(ctx, ref, today)
	if err != nil {
		return core.MonthSummary{}, err
	}
	return core.SummarizeGrid(ref, cells), nil
}

// Today returns the cell for today's date.
func (s *CalendarService) Today(ctx context.Context, today time.Time) (core.DayCell, error) {
	cells, err := s.Month(ctx, core.MonthRefOf(today), today)
	if err != nil {
		return core.DayCell{}, err
	}
	cell, _ := core.TodayCell(cells)
	return cell, nil
}

// SavePlan stores a new study plan and drops cached grids built from the old one.
func (s *CalendarService) SavePlan(ctx context.Context, p core.StudyPlan) (core.StudyPlan, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if err := s.plans.SavePlan(ctx, p); err != nil {
		return core.StudyPlan{}, fmt.Errorf("save study plan: %w", err)
	}
	s.Invalidate()
	slog.InfoContext(ctx, "Study plan saved", "id", p.ID, "exam_type", p.ExamType)
	return p, nil
}

// LatestPlan returns the most recent plan or ports.ErrNotFound.
func (s *CalendarService) LatestPlan(ctx context.Context) (core.StudyPlan, error) {
	return s.plans.LatestPlan(ctx)
}

// Invalidate drops every cached grid. Grids still being built from data read
// before the call are not cached when they finish.
func (s *CalendarService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.grids != nil {
		s.grids.Purge()
	}
}

func (s *CalendarService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *CalendarService) storeGrid(gen uint64, key string, cells []core.DayCell) {
	if s.grids == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.grids.Set(key, cells)
}

func (s *CalendarService) cacheKey(ref core.MonthRef, today time.Time) string {
	return fmt.Sprintf("%s:%04d-%02d:%s", s.strategyName, ref.Year, ref.Month(), core.DateOf(today))
}

// CachedGrids returns the number of grids currently cached.
func (s *CalendarService) CachedGrids() int {
	if s.grids == nil {
		return 0
	}
	return s.grids.Size()
}
