package middleware

import (
	"context"
	"net/http"

	"github.com/set-night/taskcoin/internal/auth"
	"github.com/set-night/taskcoin/internal/domain"
	"github.com/set-night/taskcoin/internal/httpx"
)

type ctxKey string

const (
	IdentityKey ctxKey = "identity"
	UserKey     ctxKey = "user"
)

// GetIdentity extracts the verified identity from context.
func GetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(auth.Identity)
	return id, ok
}

// GetUser extracts the role-checked user from context.
func GetUser(ctx context.Context) *domain.User {
	u, ok := ctx.Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return u
}

// Authenticate returns middleware that verifies the bearer credential and
// stores the identity in context.
func Authenticate(g *auth.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := g.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that loads the caller's current record and
// checks its role. With no roles any registered user passes. It must run
// after Authenticate.
func RequireRole(g *auth.Guard, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				httpx.WriteError(w, r, domain.ErrUnauthenticated)
				return
			}
			u, err := g.Authorize(r.Context(), id, roles...)
			if err != nil {
				httpx.WriteError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), UserKey, &u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
