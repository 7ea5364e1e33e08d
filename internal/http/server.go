package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	applog "studyplan/internal/log"
	"studyplan/internal/middleware/ratelimit"
	"studyplan/internal/middleware/security"
	"studyplan/internal/middleware/trace"
	"studyplan/internal/ports"
	"studyplan/internal/services"
	appweb "studyplan/web"
)

// requestTimeout bounds the data loading of a single page or API call.
const requestTimeout = 7 * time.Second

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the handlers call.
type Dependencies struct {
	Calendar     *services.CalendarService
	Completions  *services.CompletionService
	Achievements ports.AchievementReader
	Health       Pinger // may be nil
	Logger       *applog.Logger
}

type appMetrics struct {
	uptime             time.Time
	sessionsCompleted  int64
	plansCreated       int64
	completionFailures int64
}

type Server struct {
	http.Server
	templates    *template.Template
	calendar     *services.CalendarService
	completions  *services.CompletionService
	achievements ports.AchievementReader
	health       Pinger

	logger     *applog.Logger
	structured *applog.StructuredLogger

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	appMetrics  *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a ready-to-run server.
func NewServer(addr string, rateLimitPerMinute int, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		calendar:     deps.Calendar,
		completions:  deps.Completions,
		achievements: deps.Achievements,
		health:       deps.Health,
		logger:       logger,
		structured:   applog.NewStructuredLogger(logger),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: rateLimitPerMinute}),
		detector:     detector,
		tracer:       trace.NewMiddleware(logger, detector.ExtractClientIP),
		appMetrics:   &appMetrics{uptime: time.Now()},
	}

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", "error", err, applog.FieldComponent, applog.ComponentTemplate)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/calendar", s.handleCalendar)
	mux.HandleFunc("/api/calendar", s.handleCalendarAPI)
	mux.HandleFunc("/sessions/complete", s.handleCompleteSession)
	mux.HandleFunc("/plans", s.handleCreatePlan)
	mux.HandleFunc("/api/plan", s.handleGetPlan)
	mux.HandleFunc("/api/achievements", s.handleAchievements)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(detector.ExtractClientIP, http.MethodPost)(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and then the HTTP server. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) recordCompletion(ok bool) {
	if ok {
		atomic.AddInt64(&s.appMetrics.sessionsCompleted, 1)
		return
	}
	atomic.AddInt64(&s.appMetrics.completionFailures, 1)
}

var templateFuncs = template.FuncMap{
	"sessionItem": newSessionItem,
}
