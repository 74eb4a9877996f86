package middleware

import (
	"net/http"

	"relay-backend/internal/ratelimit"
)

// RateLimit rejects requests once the client's sliding-window budget is
// spent. Used per-IP on the token endpoint; the chat routes admit inside
// the gate service instead, so one send never pays twice.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Admit(r.RemoteAddr) {
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later.", r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
