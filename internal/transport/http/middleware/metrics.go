package middleware

import (
	"net/http"
	"time"
)

type HTTPRecorder interface {
	Record(method, route string, status int, duration time.Duration)
}

func Metrics(recorder HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if recorder == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			recorder.Record(r.Method, routePattern(r), rec.status, time.Since(start))
		})
	}
}
