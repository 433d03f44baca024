package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/abaanfida/unixora/internal/service/auth"
	"github.com/abaanfida/unixora/pkg/utils"
)

type contextKey int

const identityKey contextKey = iota

// IdentityFromContext extracts the verified caller from the request
// context.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(auth.Identity)
	return identity, ok
}

// RequireAuth verifies the bearer token and injects the caller identity
// into the request context. Websocket clients cannot set headers, so a
// "token" query parameter is accepted as a fallback.
func RequireAuth(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondMessage(w, http.StatusUnauthorized, "No token provided.")
				return
			}

			identity, err := authSvc.Verify(token)
			if err != nil {
				utils.RespondMessage(w, http.StatusUnauthorized, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
