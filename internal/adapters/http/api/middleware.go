package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/autoleague/pkg/logger"
	"github.com/okian/autoleague/pkg/metrics"
)

// MetricsMiddleware counts and times every request to endpoint, and logs
// responses that end in a server error.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		code := strconv.Itoa(rec.status)
		metrics.RecordHTTPRequest(endpoint, r.Method, code)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, code, time.Since(start).Seconds())

		if kind := errorKind(rec.status); kind != "" {
			metrics.RecordErrorByComponent("http", kind)
			if rec.status >= http.StatusInternalServerError {
				logger.Get().Named("http").Error(r.Context(), "request failed",
					logger.String("endpoint", endpoint),
					logger.String("path", r.URL.Path),
					logger.Int("status", rec.status),
				)
			}
		}
	}
}

// errorKind labels a failing status; it is empty for successes.
func errorKind(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "server_error"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case status >= http.StatusBadRequest:
		return "client_error"
	default:
		return ""
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
