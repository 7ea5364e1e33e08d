package http

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"studyplan/internal/core"
	applog "studyplan/internal/log"
	"studyplan/internal/ports"
)

const dashboardAchievements = 3

type dashboardData struct {
	TodayLabel   string
	TodayDate    string
	Sessions     []core.StudySession
	Summary      core.MonthSummary
	MonthLabel   string
	CalendarURL  string
	Plan         *core.StudyPlan
	Achievements []core.Achievement
	Subjects     []string
	ExamTypes    []string
}

// handleDashboard renders today's sessions, the month summary, the current plan
// and the latest achievements. The three sources are loaded concurrently.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	now := s.calendar.Now()
	ref := core.MonthRefOf(now)
	data := dashboardData{
		TodayLabel:  now.Format("Monday, 2 January 2006"),
		TodayDate:   core.DateOf(now).String(),
		MonthLabel:  ref.Label(),
		CalendarURL: calendarURL(ref),
		Subjects:    core.Subjects(),
		ExamTypes:   core.ExamTypes(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cells, err := s.calendar.Month(gctx, ref, now)
		if err != nil {
			return err
		}
		if today, ok := core.TodayCell(cells); ok {
			data.Sessions = today.Sessions
		}
		data.Summary = core.SummarizeGrid(ref, cells)
		return nil
	})
	g.Go(func() error {
		plan, err := s.calendar.LatestPlan(gctx)
		if errors.Is(err, ports.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		data.Plan = &plan
		return nil
	})
	g.Go(func() error {
		list, err := s.achievements.ListAchievements(gctx)
		if err != nil {
			return err
		}
		if len(list) > dashboardAchievements {
			list = list[:dashboardAchievements]
		}
		data.Achievements = list
		return nil
	})
	if err := g.Wait(); err != nil {
		s.structured.LogError(ctx, "Failed to load dashboard", err, applog.ComponentHTTP, applog.OpRender,
			applog.NewFields().WithMonth(ref.Year, ref.Month()))
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	s.render(w, r, "dashboard_page", data)
}

// render executes a named template, logging failures.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			"template", name, applog.FieldError, err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}
