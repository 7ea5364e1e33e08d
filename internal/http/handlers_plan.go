package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"

	"studyplan/internal/core"
	applog "studyplan/internal/log"
	"studyplan/internal/ports"
)

var planValidationErrors = []error{
	core.ErrNoSubjects,
	core.ErrUnknownSubject,
	core.ErrDuplicateSubject,
	core.ErrInvalidHours,
	core.ErrInvalidTargetScore,
	core.ErrUnknownExam,
	core.ErrMissingExamDate,
}

// handleCreatePlan stores a plan from the plan generator form: 201 or 422.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	plan, err := parsePlanRequest(parser)
	if err == nil {
		err = plan.Validate()
	}
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	saved, err := s.calendar.SavePlan(ctx, plan)
	if err != nil {
		if isPlanValidationError(err) {
			writeError(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.structured.LogError(ctx, "Failed to save study plan", err, applog.ComponentPlan, applog.OpCreate, nil)
		writeError(w, r, http.StatusInternalServerError, "failed to save study plan")
		return
	}

	atomic.AddInt64(&s.appMetrics.plansCreated, 1)
	s.structured.LogPlanSaved(ctx, saved)

	resp := NewHTMXResponse().Status(http.StatusCreated).TriggerPlanSaved(saved.ID)
	if isHTMX(r) {
		resp.BodyHTML(fmt.Sprintf(`<div class="success">Plan saved for %s on %s</div>`,
			template.HTMLEscapeString(saved.ExamType), saved.ExamDate.String()))
	} else {
		resp.BodyJSON(toPlanJSON(saved))
	}
	resp.Write(w)
}

// handleGetPlan returns the latest plan: 200 or 404.
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	plan, err := s.calendar.LatestPlan(ctx)
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "no study plan yet")
		return
	}
	if err != nil {
		s.structured.LogError(ctx, "Failed to load study plan", err, applog.ComponentPlan, applog.OpRead, nil)
		writeError(w, r, http.StatusInternalServerError, "failed to load study plan")
		return
	}
	writeJSON(w, http.StatusOK, toPlanJSON(plan))
}

func isPlanValidationError(err error) bool {
	for _, target := range planValidationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
