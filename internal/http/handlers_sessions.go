package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"studyplan/internal/core"
	applog "studyplan/internal/log"
	"studyplan/internal/services"
)

// handleCompleteSession marks a scheduled session as done.
//
// 200 with the completion, 422 for malformed or future requests, 404 when the
// session is not scheduled on that day.
func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		s.recordCompletion(false)
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := parseCompletionRequest(parser)
	if err != nil {
		s.recordCompletion(false)
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	c, err := s.completions.Complete(ctx, req.SessionID, req.Date)
	if err != nil {
		s.recordCompletion(false)
		status := completionErrorStatus(err)
		if status == http.StatusInternalServerError {
			s.structured.LogError(ctx, "Failed to complete session", err, applog.ComponentCompletion, applog.OpComplete,
				applog.NewFields().WithSession(req.SessionID, req.Date.String(), ""))
			writeError(w, r, status, "failed to save completion")
			return
		}
		writeError(w, r, status, err.Error())
		return
	}

	s.recordCompletion(true)
	s.structured.LogSessionCompleted(ctx, c)

	resp := NewHTMXResponse().TriggerSessionCompleted(c.SessionID, c.Date.String())
	if isHTMX(r) {
		resp.BodyHTML(fmt.Sprintf(`<span class="success">%s completed</span>`, template.HTMLEscapeString(c.Subject)))
	} else {
		resp.BodyJSON(toCompletionJSON(c))
	}
	resp.Write(w)
}

func completionErrorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidSession),
		errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, services.ErrCompletionInFuture):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
