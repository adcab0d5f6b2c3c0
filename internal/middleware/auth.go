package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/tandemapp/tandem/backend/internal/auth"
	"github.com/tandemapp/tandem/backend/pkg/utils"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	ID   string
	Name string
}

type contextKey struct{}

var identityKey contextKey

// IdentityFromContext returns the caller identity set by Authenticator.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Authenticator requires a valid token on every request it wraps. The
// token comes from the Authorization header, or from a "token" query
// parameter for websocket upgrades where custom headers are awkward.
func Authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				utils.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			identity := Identity{ID: claims.Sub, Name: claims.Name}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
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
