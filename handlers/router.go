package handlers

import (
	"context"
	"net/http"
	"time"

	"nerdfootball/metrics"
	"nerdfootball/middleware"

	"github.com/gorilla/mux"
)

// HealthChecker reports whether the backing store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// NewRouter wires every API route. health may be nil.
func NewRouter(recompute *RecomputeHandler, standings *StandingsHandler, health HealthChecker) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityMiddleware)

	r.HandleFunc("/healthz", healthz(health)).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := r.PathPrefix("/api/seasons/{season:[0-9]+}").Subrouter()
	api.HandleFunc("/weeks/{week:[0-9]+}/recompute", recompute.RecomputeWeek).Methods("POST")
	api.HandleFunc("/survivor/recompute", recompute.RecomputeSurvivor).Methods("POST")
	api.HandleFunc("/survivor/{userId}/reinstate", recompute.ReinstateSurvivor).Methods("POST")

	api.HandleFunc("/weeks/{week:[0-9]+}/scores", standings.GetWeekScores).Methods("GET")
	api.HandleFunc("/standings", standings.GetSeasonStandings).Methods("GET")
	api.HandleFunc("/survivor", standings.GetSurvivorBoard).Methods("GET")

	return r
}

func healthz(health HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := health.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
