package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/set-night/taskcoin/internal/domain"
)

type Verifier interface {
	Verify(credential string) (Identity, error)
}

type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
}

// Guard holds no state of its own. Roles are resolved from the user store
// on every call, so a role change applies to the very next request.
type Guard struct {
	verifier Verifier
	users    UserLookup
}

func NewGuard(verifier Verifier, users UserLookup) *Guard {
	return &Guard{verifier: verifier, users: users}
}

// Authenticate verifies the Authorization header value.
func (g *Guard) Authenticate(authorization string) (Identity, error) {
	token, err := BearerToken(authorization)
	if err != nil {
		return Identity{}, err
	}
	return g.verifier.Verify(token)
}

// Authorize loads the caller and checks it holds one of roles. An empty
// roles list admits any existing user.
func (g *Guard) Authorize(ctx context.Context, id Identity, roles ...domain.Role) (domain.User, error) {
	u, err := g.users.GetUserByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: no account for %s", domain.ErrForbidden, id.Email)
		}
		return domain.User{}, fmt.Errorf("load caller: %w", err)
	}
	if len(roles) > 0 && !u.HasRole(roles...) {
		return domain.User{}, fmt.Errorf("%w: role %s not permitted", domain.ErrForbidden, u.Role)
	}
	return u, nil
}

// RequireOwner checks a caller-supplied email against the verified identity.
func RequireOwner(id Identity, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.InvalidInput("email is required")
	}
	if email != id.Email {
		return domain.ErrUnauthorized
	}
	return nil
}
