package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/filedrop/service/internal/auth"
	"github.com/filedrop/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// AdminSubjectKey is the context key for the authenticated admin's subject.
const AdminSubjectKey contextKey = "adminSubject"

// RequireAdmin returns middleware that validates a Bearer admin token and
// injects its subject into the request context.
func RequireAdmin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				if errors.Is(err, auth.ErrForbidden) {
					response.Forbidden(w, err.Error())
					return
				}
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AdminSubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminSubject returns the subject injected by RequireAdmin.
func AdminSubject(ctx context.Context) string {
	s, _ := ctx.Value(AdminSubjectKey).(string)
	return s
}
