package log

import (
	"context"
	"log/slog"
	"net/http"

	"studyplan/internal/core"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// Middleware puts logger into the request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLogger(r.Context(), logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or one backed by slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// RequestIDMiddleware tags the context logger with the request ID.
func RequestIDMiddleware(extractRequestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := FromContext(r.Context()).With(FieldRequestID, extractRequestID(r))
			next.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
		})
	}
}

// StructuredLogger logs the application's recurring events with consistent fields.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	args := append([]any{FieldComponent, ComponentHTTP}, fields.ToSlice()...)
	sl.logger.Logger.Log(ctx, level, "HTTP request completed", args...)
}

func (sl *StructuredLogger) LogSessionCompleted(ctx context.Context, c core.Completion) {
	fields := NewFields().
		WithSession(c.SessionID, c.Date.String(), c.Subject).
		WithOperation(OpComplete).
		ToSlice()
	fields = append(fields, FieldCompletion, c.ID)

	sl.logger.WithComponent(ComponentCompletion).InfoContext(ctx, "Study session completed", fields...)
}

func (sl *StructuredLogger) LogPlanSaved(ctx context.Context, p core.StudyPlan) {
	sl.logger.WithComponent(ComponentPlan).InfoContext(ctx, "Study plan created",
		FieldPlanID, p.ID,
		FieldExamType, p.ExamType,
		FieldOperation, OpCreate,
		"subjects", len(p.Subjects),
		"hours_per_day", p.HoursPerDay)
}

// LogError logs err with component and operation context.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	sl.logger.WithComponent(component).ErrorContext(ctx, msg, fields.WithError(err).WithOperation(operation).ToSlice()...)
}
