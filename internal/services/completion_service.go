package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studyplan/internal/core"
	"studyplan/internal/ports"
)

// ErrCompletionInFuture is returned when a session is completed before its day.
var ErrCompletionInFuture = errors.New("cannot complete a session scheduled in the future")

// CompletionService records finished sessions and announces them to the export worker.
type CompletionService struct {
	calendar  *CalendarService
	store     ports.CompletionStore
	publisher ports.CompletionPublisher
}

// NewCompletionService wires the service. publisher may be nil when no broker is configured.
func NewCompletionService(calendar *CalendarService, store ports.CompletionStore, publisher ports.CompletionPublisher) *CompletionService {
	return &CompletionService{
		calendar:  calendar,
		store:     store,
		publisher: publisher,
	}
}

// Complete marks the session scheduled on date as done. Completing the same
// session twice returns the original record.
func (s *CompletionService) Complete(ctx context.Context, sessionID string, date core.Date) (core.Completion, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return core.Completion{}, core.ErrInvalidSession
	}
	if err := date.Validate(); err != nil {
		return core.Completion{}, err
	}

	now := s.calendar.Now()
	if date.After(core.DateOf(now).Time) {
		return core.Completion{}, fmt.Errorf("%s on %s: %w", sessionID, date, ErrCompletionInFuture)
	}

	session, err := s.findSession(ctx, sessionID, date, now)
	if err != nil {
		return core.Completion{}, err
	}

	c := core.Completion{
		SessionID:   session.ID,
		Date:        date,
		Subject:     session.Subject,
		CompletedAt: now,
	}
	id, err := s.store.MarkCompleted(ctx, c)
	if err != nil {
		return core.Completion{}, fmt.Errorf("save completion: %w", err)
	}
	c.ID = id
	s.calendar.Invalidate()

	slog.InfoContext(ctx, "Session completed",
		"id", id,
		"session_id", c.SessionID,
		"date", date.String(),
		"subject", c.Subject)

	if err := s.publish(ctx, id); err != nil {
		// The completion is stored; the worker's pending scan will export it later.
		slog.ErrorContext(ctx, "Failed to publish completion message", "id", id, "error", err)
	}
	return c, nil
}

// findSession looks the session up in the grid of date's month so only sessions
// that are actually scheduled can be completed.
func (s *CompletionService) findSession(ctx context.Context, sessionID string, date core.Date, now time.Time) (core.StudySession, error) {
	cells, err := s.calendar.Month(ctx, core.MonthRefOf(date.Time), now)
	if err != nil {
		return core.StudySession{}, err
	}
	for _, cell := range cells {
		if !cell.CurrentMonth || cell.Day != date.Day() {
			continue
		}
		if session, ok := cell.FindSession(sessionID); ok {
			return session, nil
		}
		break
	}
	return core.StudySession{}, fmt.Errorf("%s on %s: %w", sessionID, date, core.ErrSessionNotFound)
}

func (s *CompletionService) publish(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping completion message")
		return nil
	}
	return s.publisher.PublishSessionCompleted(ctx, id)
}
