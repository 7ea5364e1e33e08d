package services

import (
	"context"
	"errors"
	"testing"

	"studyplan/internal/core"
)

type recordingPublisher struct {
	ids []int64
	err error
}

func (p *recordingPublisher) PublishSessionCompleted(_ context.Context, id int64) error {
	p.ids = append(p.ids, id)
	return p.err
}

func TestCompletionService_Complete(t *testing.T) {
	svc, store := newCalendar(t, StrategyPattern)
	pub := &recordingPublisher{}
	cs := NewCompletionService(svc, store, pub)
	ctx := context.Background()
	ref := core.MonthRef{Year: 2024, MonthIndex: 1}

	// Warm the cache so the completion must invalidate it.
	if _, err := svc.Month(ctx, ref, svc.Now()); err != nil {
		t.Fatalf("Month: %v", err)
	}

	c, err := cs.Complete(ctx, " event-12-1 ", core.NewDate(2024, 2, 12))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if c.ID != 1 || c.Subject != "Physics" || c.SessionID != "event-12-1" {
		t.Fatalf("unexpected completion %+v", c)
	}
	if len(pub.ids) != 1 || pub.ids[0] != c.ID {
		t.Fatalf("published %v", pub.ids)
	}

	sum, err := svc.Summary(ctx, ref, svc.Now())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Completed != 4 || sum.CompletionRate != 7 {
		t.Fatalf("summary after completion = %+v", sum)
	}

	again, err := cs.Complete(ctx, "event-12-1", core.NewDate(2024, 2, 12))
	if err != nil || again.ID != c.ID {
		t.Fatalf("second Complete = %+v, %v", again, err)
	}
}

func TestCompletionService_Errors(t *testing.T) {
	svc, store := newCalendar(t, StrategyPattern)
	cs := NewCompletionService(svc, store, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		sessionID string
		date      core.Date
		want      error
	}{
		{"blank session", "  ", core.NewDate(2024, 2, 12), core.ErrInvalidSession},
		{"session not on that day", "event-12-1", core.NewDate(2024, 2, 13), core.ErrSessionNotFound},
		{"unknown session", "event-12-9", core.NewDate(2024, 2, 12), core.ErrSessionNotFound},
		{"future day", "event-16-1", core.NewDate(2024, 2, 16), ErrCompletionInFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := cs.Complete(ctx, tt.sessionID, tt.date)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Complete(%q, %s) error = %v, want %v", tt.sessionID, tt.date, err, tt.want)
			}
		})
	}

	if _, err := cs.Complete(ctx, "event-1-1", core.Date{}); err == nil {
		t.Fatal("expected an error for a zero date")
	}
}

func TestCompletionService_PublishFailureDoesNotFail(t *testing.T) {
	svc, store := newCalendar(t, StrategyPattern)
	pub := &recordingPublisher{err: errors.New("broker down")}
	cs := NewCompletionService(svc, store, pub)

	c, err := cs.Complete(context.Background(), "event-14-1", core.NewDate(2024, 2, 14))
	if err != nil {
		t.Fatalf("Complete should succeed when publishing fails: %v", err)
	}
	if got, err := store.GetCompletion(context.Background(), c.ID); err != nil || got.SessionID != "event-14-1" {
		t.Fatalf("completion not stored: %+v, %v", got, err)
	}
}
