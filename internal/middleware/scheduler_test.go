package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSchedulerToken(t *testing.T) {
	t.Parallel()

	const token = "super-secret"

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantNext   bool
	}{
		{"valid token", token, http.StatusOK, true},
		{"missing token", "", http.StatusUnauthorized, false},
		{"wrong token", "guess", http.StatusForbidden, false},
		{"token with extra suffix", token + "x", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nextCalled := false
			handler := SchedulerToken(token)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("POST", "/api/v1/dispatch/hannah/morning", nil)
			if tt.header != "" {
				req.Header.Set("X-Scheduler-Token", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if nextCalled != tt.wantNext {
				t.Errorf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
		})
	}
}
