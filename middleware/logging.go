package middleware

import (
	"net/http"
	"strconv"
	"time"

	"nerdfootball/logging"
	"nerdfootball/metrics"

	"github.com/gorilla/mux"
)

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs each request and records its latency by route template
func RequestLogger(next http.Handler) http.Handler {
	logger := logging.WithPrefix("HTTP")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		elapsed := time.Since(start)
		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(rec.status), elapsed)

		if rec.status >= http.StatusInternalServerError {
			logger.Warnf("%s %s -> %d in %v", r.Method, r.URL.Path, rec.status, elapsed)
			return
		}
		logger.Debugf("%s %s -> %d in %v", r.Method, r.URL.Path, rec.status, elapsed)
	})
}
