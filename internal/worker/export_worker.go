package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"studyplan/internal/amqp"
	"studyplan/internal/core"
	"studyplan/internal/ports"
	"studyplan/internal/storage"
)

// ExportWorker copies completed sessions from SQLite to the export sheet.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  ports.CompletionExporter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter ports.CompletionExporter, batchSize int) *ExportWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleCompletionMessage exports the completion named by an AMQP message.
// A returned error makes the consumer requeue the message.
func (w *ExportWorker) HandleCompletionMessage(ctx context.Context, msg *amqp.SessionCompletedMessage) error {
	slog.InfoContext(ctx, "Processing completion message",
		"id", msg.ID,
		"message_id", msg.MessageID)

	status, err := w.storage.ExportStatus(ctx, msg.ID)
	if errors.Is(err, ports.ErrNotFound) {
		slog.WarnContext(ctx, "Completion no longer exists, dropping message", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get export status: %w", err)
	}
	if status == storage.ExportDone {
		slog.InfoContext(ctx, "Completion already exported, skipping", "id", msg.ID)
		return nil
	}

	completion, err := w.storage.GetCompletion(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get completion from storage: %w", err)
	}
	return w.export(ctx, completion)
}

// ProcessPending exports completions still marked pending.
// It is the backup path for messages lost while the broker was unreachable.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	_, _, err := w.processPending(ctx, w.batchSize)
	return err
}

// StartupCheck runs a larger pending scan when the worker starts. Rows that
// already reached the sheet before a crash are marked exported first.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	limit := w.batchSize * 5
	if _, err := w.reconcile(ctx, limit); err != nil {
		slog.WarnContext(ctx, "Failed to reconcile with exported rows", "error", err)
	}
	total, exported, err := w.processPending(ctx, limit)
	if err != nil {
		return fmt.Errorf("startup export check: %w", err)
	}
	if total == 0 {
		slog.InfoContext(ctx, "No pending completions found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup export completed",
		"total", total,
		"exported", exported,
		"errors", total-exported)
	return nil
}

// reconcile marks pending completions that are already present in the sheet
// as exported. It returns how many rows were marked.
func (w *ExportWorker) reconcile(ctx context.Context, limit int) (int, error) {
	reader, ok := w.exporter.(ports.ExportedCompletionReader)
	if !ok {
		return 0, nil
	}
	pending, err := w.storage.PendingExports(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending exports: %w", err)
	}

	sheetRows := make(map[core.MonthRef]map[string]bool)
	marked := 0
	for _, p := range pending {
		day, err := core.ParseDate(p.Day)
		if err != nil {
			continue
		}
		ref := core.MonthRefOf(day.Time)
		rows, ok := sheetRows[ref]
		if !ok {
			exported, err := reader.ListCompletions(ctx, ref.Year, ref.Month())
			if err != nil {
				return marked, fmt.Errorf("read exported completions for %s: %w", ref.Label(), err)
			}
			rows = make(map[string]bool, len(exported))
			for _, c := range exported {
				rows[exportKey(c.Date.String(), c.SessionID)] = true
			}
			sheetRows[ref] = rows
		}
		if !rows[exportKey(p.Day, p.SessionID)] {
			continue
		}
		if err := w.storage.MarkExported(ctx, p.ID); err != nil {
			return marked, err
		}
		marked++
	}
	if marked > 0 {
		slog.InfoContext(ctx, "Reconciled completions already in the sheet", "count", marked)
	}
	return marked, nil
}

func exportKey(day, sessionID string) string {
	return day + "|" + sessionID
}

// RunPendingLoop calls ProcessPending every interval until ctx is cancelled.
func (w *ExportWorker) RunPendingLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending export scan failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) processPending(ctx context.Context, limit int) (total, exported int, err error) {
	pending, err := w.storage.PendingExports(ctx, limit)
	if err != nil {
		return 0, 0, fmt.Errorf("get pending exports: %w", err)
	}
	if len(pending) == 0 {
		return 0, 0, nil
	}

	slog.InfoContext(ctx, "Processing pending completions", "count", len(pending))

	for _, p := range pending {
		if ctx.Err() != nil {
			return len(pending), exported, ctx.Err()
		}
		completion, err := w.storage.GetCompletion(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get completion", "id", p.ID, "error", err)
			if err := w.storage.MarkExportError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark export error", "id", p.ID, "error", err)
			}
			continue
		}
		if err := w.export(ctx, completion); err != nil {
			slog.ErrorContext(ctx, "Failed to export completion", "id", p.ID, "error", err)
			continue
		}
		exported++
	}
	return len(pending), exported, nil
}

func (w *ExportWorker) export(ctx context.Context, c core.Completion) error {
	ref, err := w.exporter.ExportCompletion(ctx, c)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, c.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", c.ID, "error", markErr)
		}
		return fmt.Errorf("export completion: %w", err)
	}

	if err := w.storage.MarkExported(ctx, c.ID); err != nil {
		// The row is in the sheet; a later scan may append it again.
		slog.ErrorContext(ctx, "Failed to mark as exported", "id", c.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported completion",
		"id", c.ID,
		"sheet_ref", ref,
		"session_id", c.SessionID,
		"date", c.Date.String())
	return nil
}
