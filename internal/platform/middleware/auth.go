package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating operator tokens.
type TokenValidator interface {
	Validate(tokenString string) (*OperatorInfo, error)
}

// OperatorInfo is the authenticated operator identity carried in the context.
type OperatorInfo struct {
	Operator string
}

type contextKeyOperator struct{}

// GetOperator retrieves the authenticated operator name from the context.
func GetOperator(ctx context.Context) string {
	if info, ok := ctx.Value(contextKeyOperator{}).(*OperatorInfo); ok {
		return info.Operator
	}
	return ""
}

// RequireOperator guards issuance endpoints with a Bearer operator token.
func RequireOperator(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				unauthorized(w)
				return
			}

			info, err := validator.Validate(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				logger.WarnContext(r.Context(), "operator token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyOperator{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"operator token required"}`))
}
