package handlers

import (
	"context"
	"net/http"

	"nerdfootball/logging"
	"nerdfootball/models"
)

// StandingsReader is the read side of the standings service
type StandingsReader interface {
	SeasonStandings(ctx context.Context, season int) ([]models.SeasonStanding, error)
	WeekScores(ctx context.Context, season, week int) ([]models.WeeklyScoreRecord, error)
	SurvivorBoard(ctx context.Context, season int) ([]models.SurvivorEntry, error)
}

// StandingsHandler serves leaderboards and survivor status as JSON
type StandingsHandler struct {
	reader StandingsReader
	logger *logging.Logger
}

// NewStandingsHandler creates a new standings handler
func NewStandingsHandler(reader StandingsReader) *StandingsHandler {
	return &StandingsHandler{
		reader: reader,
		logger: logging.WithPrefix("StandingsHandler"),
	}
}

// GetSeasonStandings handles GET /api/seasons/{season}/standings
func (h *StandingsHandler) GetSeasonStandings(w http.ResponseWriter, r *http.Request) {
	season, _, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	standings, err := h.reader.SeasonStandings(r.Context(), season)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":    season,
		"standings": standings,
	})
}

// GetWeekScores handles GET /api/seasons/{season}/weeks/{week}/scores
func (h *StandingsHandler) GetWeekScores(w http.ResponseWriter, r *http.Request) {
	season, week, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	scores, err := h.reader.WeekScores(r.Context(), season, week)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season": season,
		"week":   week,
		"scores": scores,
	})
}

// GetSurvivorBoard handles GET /api/seasons/{season}/survivor
func (h *StandingsHandler) GetSurvivorBoard(w http.ResponseWriter, r *http.Request) {
	season, _, err := seasonWeek(r)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	entries, err := h.reader.SurvivorBoard(r.Context(), season)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	alive := 0
	for i := range entries {
		if !entries[i].IsEliminated() {
			alive++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"season":  season,
		"alive":   alive,
		"entries": entries,
	})
}
