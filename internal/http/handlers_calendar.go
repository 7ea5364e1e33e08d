package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"studyplan/internal/core"
	applog "studyplan/internal/log"
)

// handleCalendar renders the month calendar. htmx requests get only the grid partial.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	now := s.calendar.Now()
	ref, cells, ok := s.loadMonth(w, r, now)
	if !ok {
		return
	}

	name := "calendar_page"
	if isHTMX(r) {
		name = "calendar_grid"
	}
	s.render(w, r, name, newCalendarView(ref, cells, now))
}

// handleCalendarAPI returns the month grid and its summary as JSON.
func (s *Server) handleCalendarAPI(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	now := s.calendar.Now()
	ref, cells, ok := s.loadMonth(w, r, now)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCalendarJSON(ref, cells, now))
}

// loadMonth parses the month query and builds its grid, writing the error
// response itself when that fails.
func (s *Server) loadMonth(w http.ResponseWriter, r *http.Request, now time.Time) (core.MonthRef, []core.DayCell, bool) {
	ref, err := parseMonthQuery(r.URL.Query(), now)
	if err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid calendar query",
			applog.FieldQuery, r.URL.RawQuery, applog.FieldError, err)
		writeError(w, r, http.StatusBadRequest, err.Error())
		return core.MonthRef{}, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cells, err := s.calendar.Month(ctx, ref, now)
	if err != nil {
		if errors.Is(err, core.ErrInvalidMonth) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return core.MonthRef{}, nil, false
		}
		s.structured.LogError(ctx, "Failed to build month grid", err, applog.ComponentCalendar, applog.OpRead,
			applog.NewFields().WithMonth(ref.Year, ref.Month()))
		writeError(w, r, http.StatusInternalServerError, "failed to load calendar")
		return core.MonthRef{}, nil, false
	}
	return ref, cells, true
}
