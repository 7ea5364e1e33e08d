package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds the SQL statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types mirror the table columns.
type (
	SessionCompletion struct {
		ID           int64
		SessionID    string
		Day          string
		Subject      string
		CompletedAt  string
		ExportStatus string
	}

	StudyPlanRow struct {
		ID           string
		Subjects     string
		WeakSubjects string
		HoursPerDay  float64
		TargetScore  int64
		ExamType     string
		ExamDate     string
		CreatedAt    string
	}

	AchievementRow struct {
		ID          string
		Title       string
		Description string
		EarnedOn    string
		IsNew       int64
		Type        string
	}
)

const insertCompletion = `
INSERT INTO session_completions (session_id, day, subject, completed_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (day, session_id) DO NOTHING
`

type InsertCompletionParams struct {
	SessionID   string
	Day         string
	Subject     string
	CompletedAt string
}

func (q *Queries) InsertCompletion(ctx context.Context, arg InsertCompletionParams) error {
	_, err := q.db.ExecContext(ctx, insertCompletion, arg.SessionID, arg.Day, arg.Subject, arg.CompletedAt)
	return err
}

const getCompletionID = `
SELECT id FROM session_completions WHERE day = ? AND session_id = ?
`

func (q *Queries) GetCompletionID(ctx context.Context, day, sessionID string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getCompletionID, day, sessionID).Scan(&id)
	return id, err
}

const completionColumns = `id, session_id, day, subject, completed_at, export_status`

func scanCompletion(sc interface{ Scan(...any) error }) (SessionCompletion, error) {
	var c SessionCompletion
	err := sc.Scan(&c.ID, &c.SessionID, &c.Day, &c.Subject, &c.CompletedAt, &c.ExportStatus)
	return c, err
}

const getCompletion = `SELECT ` + completionColumns + ` FROM session_completions WHERE id = ?`

func (q *Queries) GetCompletion(ctx context.Context, id int64) (SessionCompletion, error) {
	return scanCompletion(q.db.QueryRowContext(ctx, getCompletion, id))
}

const listCompletionsBetween = `
SELECT ` + completionColumns + ` FROM session_completions
WHERE day >= ? AND day < ?
ORDER BY day, id
`

// ListCompletionsBetween returns completions with from <= day < to (YYYY-MM-DD strings).
func (q *Queries) ListCompletionsBetween(ctx context.Context, from, to string) ([]SessionCompletion, error) {
	return q.listCompletions(ctx, listCompletionsBetween, from, to)
}

const listPendingExports = `
SELECT ` + completionColumns + ` FROM session_completions
WHERE export_status = 'pending'
   OR (export_status = 'error' AND export_attempts < ?)
ORDER BY id
LIMIT ?
`

// ListPendingExports returns pending rows and failed rows with fewer than maxAttempts attempts.
func (q *Queries) ListPendingExports(ctx context.Context, maxAttempts, limit int64) ([]SessionCompletion, error) {
	return q.listCompletions(ctx, listPendingExports, maxAttempts, limit)
}

func (q *Queries) listCompletions(ctx context.Context, query string, args ...interface{}) ([]SessionCompletion, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SessionCompletion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setExportStatus = `UPDATE session_completions SET export_status = ? WHERE id = ?`

func (q *Queries) SetExportStatus(ctx context.Context, id int64, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, setExportStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const recordExportFailure = `
UPDATE session_completions
SET export_status = 'error', export_attempts = export_attempts + 1
WHERE id = ?
`

func (q *Queries) RecordExportFailure(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, recordExportFailure, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertPlan = `
INSERT INTO study_plans (id, subjects, weak_subjects, hours_per_day, target_score, exam_type, exam_date, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) InsertPlan(ctx context.Context, p StudyPlanRow) error {
	_, err := q.db.ExecContext(ctx, insertPlan,
		p.ID, p.Subjects, p.WeakSubjects, p.HoursPerDay, p.TargetScore, p.ExamType, p.ExamDate, p.CreatedAt)
	return err
}

const getLatestPlan = `
SELECT id, subjects, weak_subjects, hours_per_day, target_score, exam_type, exam_date, created_at
FROM study_plans
ORDER BY created_at DESC, rowid DESC
LIMIT 1
`

func (q *Queries) GetLatestPlan(ctx context.Context) (StudyPlanRow, error) {
	var p StudyPlanRow
	err := q.db.QueryRowContext(ctx, getLatestPlan).Scan(
		&p.ID, &p.Subjects, &p.WeakSubjects, &p.HoursPerDay, &p.TargetScore, &p.ExamType, &p.ExamDate, &p.CreatedAt)
	return p, err
}

const listAchievements = `
SELECT id, title, description, earned_on, is_new, type
FROM achievements
ORDER BY earned_on DESC, id
`

func (q *Queries) ListAchievements(ctx context.Context) ([]AchievementRow, error) {
	rows, err := q.db.QueryContext(ctx, listAchievements)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AchievementRow
	for rows.Next() {
		var a AchievementRow
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.EarnedOn, &a.IsNew, &a.Type); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
