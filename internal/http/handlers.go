package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name string, err error) {
		checks[name] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", fmt.Errorf("templates not loaded"))
	} else {
		checks["templates"] = "ok"
	}

	if s.health != nil {
		if err := s.health.Ping(ctx); err != nil {
			fail("backend", err)
		} else {
			checks["backend"] = "ok"
		}
	} else {
		checks["backend"] = "not_configured"
	}

	if s.calendar != nil {
		checks["grid_cache"] = map[string]interface{}{
			"entries": s.calendar.CachedGrids(),
			"status":  "ok",
		}
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.GetMetrics().ClientCount,
		"status":         "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	rl := s.rateLimiter.GetMetrics()
	gridEntries := 0
	if s.calendar != nil {
		gridEntries = s.calendar.CachedGrids()
	}

	metrics := []struct {
		name, help, kind string
		value            interface{}
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", s.tracer.Requests()},
		{"sessions_completed_total", "Study sessions marked as completed", "counter", atomic.LoadInt64(&s.appMetrics.sessionsCompleted)},
		{"session_completion_failures_total", "Rejected or failed completion requests", "counter", atomic.LoadInt64(&s.appMetrics.completionFailures)},
		{"study_plans_created_total", "Study plans created", "counter", atomic.LoadInt64(&s.appMetrics.plansCreated)},
		{"grid_cache_entries", "Month grids currently cached", "gauge", gridEntries},
		{"rate_limit_hits_total", "Total rate limit hits", "counter", rl.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rl.ClientCount},
		{"suspicious_requests_total", "Total suspicious requests blocked", "counter", s.detector.SuspiciousRequests()},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.appMetrics.uptime).Seconds())},
	}

	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
