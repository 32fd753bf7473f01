package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/set-night/taskcoin/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestIssueVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, "taskcoin", time.Hour)

	tok, err := issuer.Issue(" Worker@X.io ")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.Email != "worker@x.io" {
		t.Fatalf("expected normalized email, got %q", id.Email)
	}
}

func TestVerifyFailures(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer(testSecret, "taskcoin", time.Hour).WithClock(func() time.Time { return base })
	tok, err := issuer.Issue("w@x.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expired := issuer.WithClock(func() time.Time { return base.Add(2 * time.Hour) })
	otherKey := NewTokenIssuer(strings.Repeat("z", 32), "taskcoin", time.Hour).WithClock(func() time.Time { return base })
	otherIssuer := NewTokenIssuer(testSecret, "someone-else", time.Hour).WithClock(func() time.Time { return base })

	cases := []struct {
		name     string
		verifier *TokenIssuer
		token    string
		want     error
	}{
		{"empty", issuer, "", domain.ErrUnauthenticated},
		{"malformed", issuer, "not-a-jwt", domain.ErrUnauthenticated},
		{"expired", expired, tok, domain.ErrInvalidCredential},
		{"wrong key", otherKey, tok, domain.ErrInvalidCredential},
		{"wrong issuer", otherIssuer, tok, domain.ErrInvalidCredential},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.verifier.Verify(tc.token)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	if tok, err := BearerToken("Bearer abc"); err != nil || tok != "abc" {
		t.Fatalf("expected abc, got %q (%v)", tok, err)
	}
	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc", "abc"} {
		if _, err := BearerToken(h); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Fatalf("header %q: expected unauthenticated, got %v", h, err)
		}
	}
}

type fakeUsers map[string]domain.User

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	u, ok := f[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func TestGuardAuthorizeUsesLiveRole(t *testing.T) {
	users := fakeUsers{"w@x.io": {Email: "w@x.io", Role: domain.RoleWorker}}
	issuer := NewTokenIssuer(testSecret, "taskcoin", time.Hour)
	g := NewGuard(issuer, users)

	tok, _ := issuer.Issue("w@x.io")
	id, err := g.Authenticate("Bearer " + tok)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if _, err := g.Authorize(context.Background(), id, domain.RoleAdmin); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for worker, got %v", err)
	}

	users["w@x.io"] = domain.User{Email: "w@x.io", Role: domain.RoleAdmin}
	u, err := g.Authorize(context.Background(), id, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("expected promoted user to pass: %v", err)
	}
	if u.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %s", u.Role)
	}

	if _, err := g.Authorize(context.Background(), Identity{Email: "ghost@x.io"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for unknown user, got %v", err)
	}
}

func TestRequireOwner(t *testing.T) {
	id := Identity{Email: "w@x.io"}
	if err := RequireOwner(id, "W@x.io"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := RequireOwner(id, "c@x.io"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := RequireOwner(id, ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
