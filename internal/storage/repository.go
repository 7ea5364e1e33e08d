package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"studyplan/internal/core"
	"studyplan/internal/ports"

	_ "modernc.org/sqlite"
)

// Export states of a completion row.
const (
	ExportPending = "pending"
	ExportDone    = "exported"
	ExportError   = "error"
)

// MaxExportAttempts is how many failed exports a completion gets before the
// pending scan stops retrying it.
const MaxExportAttempts = 5

const timestampStyle = time.RFC3339Nano

// Ensure interface conformance
var (
	_ ports.CompletionStore   = (*SQLiteRepository)(nil)
	_ ports.PlanStore         = (*SQLiteRepository)(nil)
	_ ports.AchievementReader = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite repository ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// MarkCompleted implements ports.CompletionStore
func (r *SQLiteRepository) MarkCompleted(ctx context.Context, c core.Completion) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	day := c.Date.String()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	err = q.InsertCompletion(ctx, InsertCompletionParams{
		SessionID:   c.SessionID,
		Day:         day,
		Subject:     c.Subject,
		CompletedAt: c.CompletedAt.UTC().Format(timestampStyle),
	})
	if err != nil {
		return 0, fmt.Errorf("insert completion: %w", err)
	}

	id, err := q.GetCompletionID(ctx, day, c.SessionID)
	if err != nil {
		return 0, fmt.Errorf("get completion id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit completion: %w", err)
	}

	slog.InfoContext(ctx, "Session completion saved to SQLite",
		"id", id,
		"session_id", c.SessionID,
		"day", day,
		"subject", c.Subject)

	return id, nil
}

// ListCompletions implements ports.CompletionStore
func (r *SQLiteRepository) ListCompletions(ctx context.Context, year int, month int) ([]core.Completion, error) {
	ref, err := core.NewMonthRef(year, month)
	if err != nil {
		return nil, err
	}
	next := ref.Next()
	from := core.NewDate(ref.Year, ref.Month(), 1).String()
	to := core.NewDate(next.Year, next.Month(), 1).String()

	rows, err := r.queries.ListCompletionsBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list completions %s..%s: %w", from, to, err)
	}

	out := make([]core.Completion, 0, len(rows))
	for _, row := range rows {
		c, err := completionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GetCompletion implements ports.CompletionStore
func (r *SQLiteRepository) GetCompletion(ctx context.Context, id int64) (core.Completion, error) {
	row, err := r.queries.GetCompletion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Completion{}, fmt.Errorf("completion %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Completion{}, fmt.Errorf("get completion by id: %w", err)
	}
	return completionFromRow(row)
}

// PendingExport is the minimal data needed to queue an export.
type PendingExport struct {
	ID        int64
	SessionID string
	Day       string
}

// PendingExports returns completions that have not been exported yet, oldest first.
// Failed exports are included until they reach MaxExportAttempts.
func (r *SQLiteRepository) PendingExports(ctx context.Context, limit int) ([]PendingExport, error) {
	rows, err := r.queries.ListPendingExports(ctx, MaxExportAttempts, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list pending exports: %w", err)
	}
	out := make([]PendingExport, len(rows))
	for i, row := range rows {
		out[i] = PendingExport{ID: row.ID, SessionID: row.SessionID, Day: row.Day}
	}
	return out, nil
}

// ExportStatus returns the export state of a completion.
func (r *SQLiteRepository) ExportStatus(ctx context.Context, id int64) (string, error) {
	row, err := r.queries.GetCompletion(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("completion %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get completion export status: %w", err)
	}
	return row.ExportStatus, nil
}

// MarkExported marks a completion as copied to the sheet.
func (r *SQLiteRepository) MarkExported(ctx context.Context, id int64) error {
	if err := r.setExportStatus(ctx, id, ExportDone); err != nil {
		return fmt.Errorf("mark completion exported: %w", err)
	}
	slog.InfoContext(ctx, "Completion marked as exported", "id", id)
	return nil
}

// MarkExportError flags a failed export and counts the attempt.
func (r *SQLiteRepository) MarkExportError(ctx context.Context, id int64) error {
	n, err := r.queries.RecordExportFailure(ctx, id)
	if err == nil && n == 0 {
		err = fmt.Errorf("completion %d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("mark completion export error: %w", err)
	}
	slog.WarnContext(ctx, "Completion marked with export error", "id", id)
	return nil
}

func (r *SQLiteRepository) setExportStatus(ctx context.Context, id int64, status string) error {
	n, err := r.queries.SetExportStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("completion %d: %w", id, ports.ErrNotFound)
	}
	return nil
}

// SavePlan implements ports.PlanStore
func (r *SQLiteRepository) SavePlan(ctx context.Context, p core.StudyPlan) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	err := r.queries.InsertPlan(ctx, StudyPlanRow{
		ID:           p.ID,
		Subjects:     strings.Join(p.Subjects, ","),
		WeakSubjects: strings.Join(p.WeakSubjects, ","),
		HoursPerDay:  p.HoursPerDay,
		TargetScore:  int64(p.TargetScore),
		ExamType:     p.ExamType,
		ExamDate:     p.ExamDate.String(),
		CreatedAt:    p.CreatedAt.UTC().Format(timestampStyle),
	})
	if err != nil {
		return fmt.Errorf("insert study plan: %w", err)
	}
	slog.InfoContext(ctx, "Study plan saved to SQLite", "id", p.ID, "exam_type", p.ExamType, "subjects", len(p.Subjects))
	return nil
}

// LatestPlan implements ports.PlanStore
func (r *SQLiteRepository) LatestPlan(ctx context.Context) (core.StudyPlan, error) {
	row, err := r.queries.GetLatestPlan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.StudyPlan{}, fmt.Errorf("study plan: %w", ports.ErrNotFound)
	}
	if err != nil {
		return core.StudyPlan{}, fmt.Errorf("get latest plan: %w", err)
	}

	examDate, err := core.ParseDate(row.ExamDate)
	if err != nil {
		return core.StudyPlan{}, fmt.Errorf("plan %s: %w", row.ID, err)
	}
	createdAt, err := time.Parse(timestampStyle, row.CreatedAt)
	if err != nil {
		return core.StudyPlan{}, fmt.Errorf("plan %s created_at: %w", row.ID, err)
	}
	return core.StudyPlan{
		ID:           row.ID,
		Subjects:     splitList(row.Subjects),
		WeakSubjects: splitList(row.WeakSubjects),
		HoursPerDay:  row.HoursPerDay,
		TargetScore:  int(row.TargetScore),
		ExamType:     row.ExamType,
		ExamDate:     examDate,
		CreatedAt:    createdAt,
	}, nil
}

// ListAchievements implements ports.AchievementReader
func (r *SQLiteRepository) ListAchievements(ctx context.Context) ([]core.Achievement, error) {
	rows, err := r.queries.ListAchievements(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	out := make([]core.Achievement, 0, len(rows))
	for _, row := range rows {
		earned, err := core.ParseDate(row.EarnedOn)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", row.ID, err)
		}
		out = append(out, core.Achievement{
			ID:          row.ID,
			Title:       row.Title,
			Description: row.Description,
			EarnedOn:    earned,
			IsNew:       row.IsNew != 0,
			Type:        core.AchievementType(row.Type),
		})
	}
	return out, nil
}

func completionFromRow(row SessionCompletion) (core.Completion, error) {
	day, err := core.ParseDate(row.Day)
	if err != nil {
		return core.Completion{}, fmt.Errorf("completion %d: %w", row.ID, err)
	}
	completedAt, err := time.Parse(timestampStyle, row.CompletedAt)
	if err != nil {
		return core.Completion{}, fmt.Errorf("completion %d completed_at: %w", row.ID, err)
	}
	return core.Completion{
		ID:          row.ID,
		SessionID:   row.SessionID,
		Date:        day,
		Subject:     row.Subject,
		CompletedAt: completedAt,
	}, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
