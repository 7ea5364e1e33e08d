package http

import (
	"context"
	"errors"
	"net/http"

	"studyplan/internal/core"
	applog "studyplan/internal/log"
)

// handleAchievements lists achievements, optionally filtered by ?type=.
func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	list, err := s.achievements.ListAchievements(ctx)
	if err != nil {
		s.structured.LogError(ctx, "Failed to list achievements", err, applog.ComponentHTTP, applog.OpList, nil)
		writeError(w, r, http.StatusInternalServerError, "failed to load achievements")
		return
	}

	filtered, err := core.FilterAchievements(list, r.URL.Query().Get("type"))
	if errors.Is(err, core.ErrUnknownAchievementType) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "failed to filter achievements")
		return
	}

	out := make([]achievementJSON, len(filtered))
	for i, a := range filtered {
		out[i] = toAchievementJSON(a)
	}
	writeJSON(w, http.StatusOK, out)
}
