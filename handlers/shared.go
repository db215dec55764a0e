package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"nerdfootball/logging"
	"nerdfootball/services"

	"github.com/gorilla/mux"
)

// errorResponse is the body of every failed API call
type errorResponse struct {
	Error string `json:"error"`
	Retry bool   `json:"retry"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, retry bool) {
	writeJSON(w, status, errorResponse{Error: message, Retry: retry})
}

// writeServiceError maps service errors onto API responses. Internal details
// are logged, never returned.
func writeServiceError(w http.ResponseWriter, logger *logging.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidSeason), errors.Is(err, services.ErrInvalidWeek):
		writeError(w, http.StatusBadRequest, err.Error(), false)
	case errors.Is(err, services.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, "survivor entry not found", false)
	case errors.Is(err, services.ErrNotEliminated):
		writeError(w, http.StatusConflict, "survivor entry is not eliminated", false)
	case errors.Is(err, services.ErrStoreUnavailable):
		logger.Errorf("Store unavailable: %v", err)
		writeError(w, http.StatusServiceUnavailable, "standings may be stale, retry later", true)
	default:
		logger.Errorf("Unexpected error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error", true)
	}
}

// seasonWeek parses the {season} and optional {week} route variables
func seasonWeek(r *http.Request) (season, week int, err error) {
	vars := mux.Vars(r)

	season, err = strconv.Atoi(vars["season"])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", services.ErrInvalidSeason, vars["season"])
	}
	if raw, ok := vars["week"]; ok {
		week, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", services.ErrInvalidWeek, raw)
		}
	}
	return season, week, nil
}
