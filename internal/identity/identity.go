// Package identity resolves the caller's identity from a request credential
// and answers authorization questions about it.
//
// The storefront delegates credential issuance to an external provider; what
// arrives here is an opaque bearer token. Resolution and policy are both
// interfaces so the trusting token-as-username scheme can be swapped for a
// verifying one without touching any handler.
package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/watchworks/storefront/internal/domain"
)

// Identity names an authenticated caller.
type Identity struct {
	// Username is the opaque user identifier used as the partition key for
	// cart, card, and order ownership.
	Username string
}

// Resolver extracts an identity from an HTTP request, or fails.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (Identity, error)
}

// Policy decides privilege questions about a resolved identity.
type Policy interface {
	IsAdmin(id Identity) bool
}

// BearerResolver reads the Authorization bearer token and trusts it as the
// user identifier. No signature verification happens here; the token is
// issued and validated upstream by the identity provider.
type BearerResolver struct{}

func (BearerResolver) Resolve(_ context.Context, r *http.Request) (Identity, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if header == "" || token == "" || token == header {
		return Identity{}, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthenticated)
	}
	return Identity{Username: token}, nil
}

// AllowListPolicy grants admin rights to a configured set of usernames.
// The set comes from configuration, never from a literal in code.
type AllowListPolicy struct {
	admins map[string]struct{}
}

// NewAllowListPolicy builds the policy from a list of usernames.
// Matching is case-insensitive because the identifiers are email-shaped.
func NewAllowListPolicy(usernames []string) *AllowListPolicy {
	admins := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		u = strings.ToLower(strings.TrimSpace(u))
		if u != "" {
			admins[u] = struct{}{}
		}
	}
	return &AllowListPolicy{admins: admins}
}

func (p *AllowListPolicy) IsAdmin(id Identity) bool {
	_, ok := p.admins[strings.ToLower(id.Username)]
	return ok
}

// contextKey is an unexported type for context keys in this package.
// Using a custom type prevents collisions with keys from other packages
// that might use the same underlying string value.
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity stores a resolved identity in the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext retrieves the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
