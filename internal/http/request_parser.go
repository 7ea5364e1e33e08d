// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies sent either as
// HTML forms (htmx) or as JSON (API clients).

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"studyplan/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most 64 KiB of the request body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = errors.New("request body too large")
		}
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetList returns every value of key: a JSON array, repeated form fields, or
// a single comma separated value. Blank entries are dropped.
func (p *RequestBodyParser) GetList(key string) []string {
	var raw []string
	switch {
	case p.jsonData != nil:
		switch v := p.jsonData[key].(type) {
		case []interface{}:
			for _, item := range v {
				raw = append(raw, stringValue(item))
			}
		case string:
			raw = strings.Split(v, ",")
		}
	case p.formData != nil:
		for _, v := range p.formData[key] {
			raw = append(raw, strings.Split(v, ",")...)
		}
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = sanitizeInput(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// completionRequest is the body of POST /sessions/complete.
type completionRequest struct {
	SessionID string
	Date      core.Date
}

func parseCompletionRequest(p *RequestBodyParser) (completionRequest, error) {
	req := completionRequest{SessionID: p.Get("session_id")}
	if req.SessionID == "" {
		return req, core.ErrInvalidSession
	}
	raw := p.Get("date")
	if raw == "" {
		return req, errors.New("date is required")
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return req, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	req.Date = d
	return req, nil
}

// parsePlanRequest reads the plan generator form. Validation of the values
// themselves is left to core.StudyPlan.Validate.
func parsePlanRequest(p *RequestBodyParser) (core.StudyPlan, error) {
	plan := core.StudyPlan{
		Subjects:     p.GetList("subjects"),
		WeakSubjects: p.GetList("weak_subjects"),
		ExamType:     p.Get("exam_type"),
	}

	if v := p.Get("hours_per_day"); v != "" {
		h, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return plan, fmt.Errorf("hours_per_day %q: %w", v, core.ErrInvalidHours)
		}
		plan.HoursPerDay = h
	}
	if v := p.Get("target_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return plan, fmt.Errorf("target_score %q: %w", v, core.ErrInvalidTargetScore)
		}
		plan.TargetScore = n
	}
	if v := p.Get("exam_date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return plan, fmt.Errorf("exam_date must be YYYY-MM-DD: %w", err)
		}
		plan.ExamDate = d
	}
	return plan, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
