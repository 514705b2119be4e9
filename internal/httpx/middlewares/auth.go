package middlewares

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ac2302/3d-ecommerce-backend/internal/identity"
)

type contextKey string

const principalKey contextKey = "principal"

// AuthOnly rejects requests that do not carry a resolvable bearer token
// and attaches the authenticated user to the request context. Handlers
// behind it can rely on PrincipalFromContext succeeding.
func AuthOnly(users identity.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			user, err := users.FindByToken(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user attached by
// AuthOnly. The boolean is false on routes not behind the middleware.
func PrincipalFromContext(ctx context.Context) (*identity.User, bool) {
	user, ok := ctx.Value(principalKey).(*identity.User)
	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": msg,
	})
}
