package action

import (
	"context"
	"net/http"

	"github.com/volunteerhq/volunteer-api/internal/domain"
)

// IdentityResolver determines who is calling. A nil identity with a nil
// error means the caller is anonymous.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, r *http.Request) (*domain.Identity, error)
}

// IdentityResolverFunc adapts a function to IdentityResolver.
type IdentityResolverFunc func(ctx context.Context, r *http.Request) (*domain.Identity, error)

func (f IdentityResolverFunc) ResolveIdentity(ctx context.Context, r *http.Request) (*domain.Identity, error) {
	return f(ctx, r)
}

// Anonymous resolves every caller as anonymous.
var Anonymous IdentityResolver = IdentityResolverFunc(
	func(context.Context, *http.Request) (*domain.Identity, error) { return nil, nil },
)

// StaticIdentity resolves every caller as id. Each request receives its own
// copy so handlers cannot leak changes between requests.
func StaticIdentity(id domain.Identity) IdentityResolver {
	return IdentityResolverFunc(func(context.Context, *http.Request) (*domain.Identity, error) {
		user := id
		return &user, nil
	})
}
