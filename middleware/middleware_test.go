package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMiddleware(t *testing.T) {
	Convey("Given a router using both middlewares", t, func() {
		r := mux.NewRouter()
		r.Use(RequestLogger)
		r.Use(SecurityMiddleware)
		r.HandleFunc("/api/seasons/{season}/standings", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}).Methods("GET")

		Convey("When a request is served", func() {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/seasons/2025/standings", nil))

			Convey("Then the handler status passes through", func() {
				So(rec.Code, ShouldEqual, http.StatusTeapot)
			})

			Convey("Then API security headers are set", func() {
				So(rec.Header().Get("X-Frame-Options"), ShouldEqual, "DENY")
				So(rec.Header().Get("X-Content-Type-Options"), ShouldEqual, "nosniff")
				So(rec.Header().Get("Cache-Control"), ShouldEqual, "no-store")
			})
		})
	})

	Convey("Given a status recorder", t, func() {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}

		Convey("Then it keeps 200 until a status is written", func() {
			So(rec.status, ShouldEqual, http.StatusOK)
			rec.WriteHeader(http.StatusServiceUnavailable)
			So(rec.status, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
