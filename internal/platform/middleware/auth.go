package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"rollbook/pkg/requestcontext"
)

// JWTClaims carries the authenticated subject extracted from a bearer token.
type JWTClaims struct {
	UserRef   string
	SessionID string
}

// JWTValidator validates bearer tokens for RequireAuth.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated user reference and session id into the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithUserRef(ctx, claims.UserRef)
			ctx = requestcontext.WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserRef retrieves the authenticated user reference set by RequireAuth.
func GetUserRef(ctx context.Context) string {
	return requestcontext.UserRef(ctx)
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
