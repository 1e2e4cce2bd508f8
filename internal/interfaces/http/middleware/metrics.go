package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// HTTPRecorder receives one observation per request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, d time.Duration)
}

// Metrics records request counts and latency labelled by the matched chi
// route pattern, so path parameters do not explode label cardinality.
// Unmatched requests are labelled "unmatched".
func Metrics(rec HTTPRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if p := rc.RoutePattern(); p != "" {
					route = p
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rec.RecordHTTPRequest(r.Method, route, status, time.Since(start))
		})
	}
}

//Personal.AI order the ending
