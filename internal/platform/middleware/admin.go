package middleware

import (
	"log/slog"
	"net/http"

	"certifica/pkg/secrets"
)

// RequireAdminToken protects the listing/export endpoints. The expected token
// is configured as a bcrypt hash so the plaintext never lives in the process
// environment.
func RequireAdminToken(expectedHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if expectedHash == "" || token == "" || secrets.Verify(token, expectedHash) != nil {
				logger.WarnContext(r.Context(), "admin token rejected",
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
