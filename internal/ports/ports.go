package ports

import (
	"context"
	"errors"

	"studyplan/internal/core"
)

// ErrNotFound is returned by stores when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Ports for outbound adapters.
type (
	// CompletionStore records study sessions the student has finished.
	CompletionStore interface {
		// MarkCompleted stores the completion and returns its id. Completing the
		// same session on the same day twice returns the existing id.
		MarkCompleted(ctx context.Context, c core.Completion) (id int64, err error)
		// ListCompletions returns the completions dated in the given year and month (1-12).
		ListCompletions(ctx context.Context, year int, month int) ([]core.Completion, error)
		GetCompletion(ctx context.Context, id int64) (core.Completion, error)
	}

	// PlanStore keeps the plans produced by the study-plan generator.
	PlanStore interface {
		SavePlan(ctx context.Context, p core.StudyPlan) error
		// LatestPlan returns the most recently saved plan or ErrNotFound.
		LatestPlan(ctx context.Context) (core.StudyPlan, error)
	}

	AchievementReader interface {
		ListAchievements(ctx context.Context) ([]core.Achievement, error)
	}

	// CompletionExporter copies completions to an external sheet.
	CompletionExporter interface {
		ExportCompletion(ctx context.Context, c core.Completion) (rowRef string, err error)
	}

	// ExportedCompletionReader reads back completions an exporter has already written.
	ExportedCompletionReader interface {
		ListCompletions(ctx context.Context, year int, month int) ([]core.Completion, error)
	}

	// CompletionPublisher announces new completions to background workers.
	CompletionPublisher interface {
		PublishSessionCompleted(ctx context.Context, id int64) error
	}
)
