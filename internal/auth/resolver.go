package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/volunteerhq/volunteer-api/internal/action"
	"github.com/volunteerhq/volunteer-api/internal/domain"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
)

// Resolver identifies callers from a bearer token or the session cookie.
// Callers presenting no token, or one that fails verification, are
// anonymous; handlers decide whether that is enough.
type Resolver struct {
	tokens     *Tokens
	cookieName string
}

var _ action.IdentityResolver = (*Resolver)(nil)

// NewResolver builds a Resolver reading cookieName when no Authorization
// header is present.
func NewResolver(tokens *Tokens, cookieName string) *Resolver {
	return &Resolver{tokens: tokens, cookieName: cookieName}
}

func (r *Resolver) ResolveIdentity(ctx context.Context, req *http.Request) (*domain.Identity, error) {
	token, err := r.token(req)
	if errors.Is(err, ErrMissingToken) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).Debug("ignoring malformed credentials", "error", err)
		return nil, nil
	}

	id, err := r.tokens.Verify(ctx, token)
	if err != nil {
		return nil, nil
	}
	return id, nil
}

func (r *Resolver) token(req *http.Request) (string, error) {
	if header := req.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", ErrInvalidToken
		}
		return strings.TrimSpace(token), nil
	}
	if r.cookieName != "" {
		if cookie, err := req.Cookie(r.cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}
	return "", ErrMissingToken
}
