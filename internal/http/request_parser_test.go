package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"studyplan/internal/core"
)

func TestParseMonthQuery(t *testing.T) {
	now := time.Date(2024, time.February, 15, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   url.Values
		want    core.MonthRef
		wantErr bool
	}{
		{"defaults to now", url.Values{}, core.MonthRef{Year: 2024, MonthIndex: 1}, false},
		{"explicit", url.Values{"year": {"2023"}, "month": {"12"}}, core.MonthRef{Year: 2023, MonthIndex: 11}, false},
		{"month only", url.Values{"month": {"1"}}, core.MonthRef{Year: 2024, MonthIndex: 0}, false},
		{"month zero", url.Values{"month": {"0"}}, core.MonthRef{}, true},
		{"month thirteen", url.Values{"month": {"13"}}, core.MonthRef{}, true},
		{"month text", url.Values{"month": {"feb"}}, core.MonthRef{}, true},
		{"year text", url.Values{"year": {"abc"}}, core.MonthRef{}, true},
		{"year zero", url.Values{"year": {"0"}}, core.MonthRef{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMonthQuery(tt.query, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("parseMonthQuery() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func newParser(t *testing.T, contentType, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return p
}

func TestRequestBodyParser(t *testing.T) {
	form := newParser(t, "application/x-www-form-urlencoded",
		"session_id=+event-2-1+&subjects=Physics&subjects=Chemistry&weak_subjects=Biology,+Physics")
	if form.IsJSON() {
		t.Fatal("form body parsed as JSON")
	}
	if got := form.Get("session_id"); got != "event-2-1" {
		t.Errorf("Get(session_id) = %q", got)
	}
	if got := form.GetList("subjects"); !reflect.DeepEqual(got, []string{"Physics", "Chemistry"}) {
		t.Errorf("GetList(subjects) = %v", got)
	}
	if got := form.GetList("weak_subjects"); !reflect.DeepEqual(got, []string{"Biology", "Physics"}) {
		t.Errorf("GetList(weak_subjects) = %v", got)
	}

	js := newParser(t, "application/json", `{"subjects":["Physics","Mathematics"],"hours_per_day":4.5,"exam_type":"NEET"}`)
	if !js.IsJSON() {
		t.Fatal("JSON body not detected")
	}
	if got := js.GetList("subjects"); !reflect.DeepEqual(got, []string{"Physics", "Mathematics"}) {
		t.Errorf("GetList(subjects) = %v", got)
	}
	if got := js.Get("hours_per_day"); got != "4.5" {
		t.Errorf("Get(hours_per_day) = %q", got)
	}
	if got := js.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q", got)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", maxBodyBytes+10)))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestParseCompletionRequest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"ok", "session_id=event-2-1&date=2024-02-02", nil},
		{"missing session", "date=2024-02-02", core.ErrInvalidSession},
		{"missing date", "session_id=event-2-1", errAny},
		{"bad date", "session_id=event-2-1&date=02/02/2024", errAny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := parseCompletionRequest(newParser(t, "application/x-www-form-urlencoded", tt.body))
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr == errAny && err == nil:
				t.Fatal("expected an error")
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && (req.SessionID != "event-2-1" || req.Date.String() != "2024-02-02") {
				t.Fatalf("request = %+v", req)
			}
		})
	}
}

var errAny = errors.New("any error")

func TestParsePlanRequest(t *testing.T) {
	p := newParser(t, "application/x-www-form-urlencoded",
		"subjects=Physics&subjects=Chemistry&weak_subjects=Chemistry&hours_per_day=3.5&target_score=85&exam_type=NEET&exam_date=2024-05-05")
	plan, err := parsePlanRequest(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("parsed plan invalid: %v", err)
	}
	if plan.HoursPerDay != 3.5 || plan.TargetScore != 85 || plan.ExamDate.String() != "2024-05-05" {
		t.Fatalf("plan = %+v", plan)
	}

	if _, err := parsePlanRequest(newParser(t, "application/x-www-form-urlencoded", "hours_per_day=lots")); !errors.Is(err, core.ErrInvalidHours) {
		t.Fatalf("expected ErrInvalidHours, got %v", err)
	}
	if _, err := parsePlanRequest(newParser(t, "application/x-www-form-urlencoded", "target_score=high")); !errors.Is(err, core.ErrInvalidTargetScore) {
		t.Fatalf("expected ErrInvalidTargetScore, got %v", err)
	}
}
