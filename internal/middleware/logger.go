package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RequestObserver interface {
	ObserveRequest(route, method, status string, ms float64)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// RequestLogger logs one line per request and feeds obs, which may be nil.
func RequestLogger(logger zerolog.Logger, obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := routePattern(r)
			if obs != nil {
				obs.ObserveRequest(route, r.Method, strconv.Itoa(rec.Status()), float64(elapsed.Microseconds())/1000)
			}

			ev := logger.Info()
			if rec.Status() >= http.StatusInternalServerError {
				ev = logger.Error()
			}
			if u, ok := UserFrom(r.Context()); ok {
				ev = ev.Str("user_id", u.ID)
			}
			ev.Str("request_id", chimw.GetReqID(r.Context())).
				Str("correlation_id", GetCorrelationID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", rec.Status()).
				Dur("duration", elapsed).
				Msg("request completed")
		})
	}
}

// routePattern keeps metric cardinality bounded by using the matched chi pattern.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
