package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"nerdfootball/logging"
	"nerdfootball/models"
	"nerdfootball/services"

	"github.com/gorilla/mux"
)

// Coordinator is the trigger side of the recompute service
type Coordinator interface {
	RecomputeWeek(ctx context.Context, season, week int) (services.RunSummary, error)
	RecomputeSurvivor(ctx context.Context, season int) (services.RunSummary, error)
	ReinstateSurvivor(ctx context.Context, season int, userID, actor, note string) (models.SurvivorEntry, error)
}

// RecomputeHandler exposes the admin and webhook triggers
type RecomputeHandler struct {
	coordinator Coordinator
	logger      *logging.Logger
}

// NewRecomputeHandler creates a new recompute handler
func NewRecomputeHandler(coordinator Coordinator) *RecomputeHandler {
	return &RecomputeHandler{
		coordinator: coordinator,
		logger:      logging.WithPrefix("RecomputeHandler"),
	}
}

// reinstateRequest is the body of a reinstatement
type reinstateRequest struct {
	Actor string `json:"actor"`
	Note  string `json:"note"`
}

// RecomputeWeek handles POST /api/seasons/{season}/weeks/{week}/recompute
func (h *RecomputeHandler) RecomputeWeek(w http.ResponseWriter, r *http.Request) {
	season, week, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary, err := h.coordinator.RecomputeWeek(r.Context(), season, week)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// RecomputeSurvivor handles POST /api/seasons/{season}/survivor/recompute
func (h *RecomputeHandler) RecomputeSurvivor(w http.ResponseWriter, r *http.Request) {
	season, _, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	summary, err := h.coordinator.RecomputeSurvivor(r.Context(), season)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ReinstateSurvivor handles POST /api/seasons/{season}/survivor/{userId}/reinstate
func (h *RecomputeHandler) ReinstateSurvivor(w http.ResponseWriter, r *http.Request) {
	season, _, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	userID := mux.Vars(r)["userId"]

	var req reinstateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", false)
		return
	}
	req.Actor = strings.TrimSpace(req.Actor)
	if req.Actor == "" {
		writeError(w, http.StatusBadRequest, "actor is required", false)
		return
	}

	entry, err := h.coordinator.ReinstateSurvivor(r.Context(), season, userID, req.Actor, req.Note)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.logger.Infof("Survivor entry %s reinstated by %s", userID, req.Actor)
	writeJSON(w, http.StatusOK, entry)
}
