package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studyplan/internal/core"
)

var errBadMonthQuery = errors.New("invalid calendar query")

// parseMonthQuery reads year and month (1-12) from the query string. Missing
// values default to the month of now; out-of-range values are errors, never clamped.
func parseMonthQuery(query url.Values, now time.Time) (core.MonthRef, error) {
	ref := core.MonthRefOf(now)

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return core.MonthRef{}, fmt.Errorf("%w: year %q", errBadMonthQuery, v)
		}
		ref.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.MonthRef{}, fmt.Errorf("%w: month %q", errBadMonthQuery, v)
		}
		r, err := core.NewMonthRef(ref.Year, m)
		if err != nil {
			return core.MonthRef{}, err
		}
		ref = r
	}
	return ref, nil
}

// calendarURL links to the calendar page of ref, month numbered 1-12.
func calendarURL(ref core.MonthRef) string {
	return fmt.Sprintf("/calendar?year=%d&month=%d", ref.Year, ref.Month())
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers htmx with an HTML fragment and everyone else with JSON.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	if isHTMX(r) {
		ErrorResponse(status, message).Write(w)
		return
	}
	writeJSON(w, status, map[string]string{"error": message})
}

// sanitizeInput removes control characters other than tab and newlines, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
