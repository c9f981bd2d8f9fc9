package middleware

import (
	"crypto/subtle"
	"net/http"
)

// SchedulerToken protects dispatch endpoints: only callers presenting the
// shared token (the cron scheduler) may trigger a run.
func SchedulerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-Scheduler-Token")
			if provided == "" {
				respondError(w, http.StatusUnauthorized, "Missing X-Scheduler-Token header")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				respondError(w, http.StatusForbidden, "Invalid scheduler token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
