package action

import (
	"net"
	"net/http"
	"strings"

	"github.com/volunteerhq/volunteer-api/internal/domain"
)

// Context is handed to every handler alongside its request. It is built
// fresh for each request and is never shared.
type Context struct {
	// IP is the caller's address without port. It is best-effort and may be
	// empty.
	IP string
	// Origin is the scheme and host the server is reachable under.
	Origin string
	// RequestHeaders is a copy of the inbound headers. Nothing in them has
	// been verified.
	RequestHeaders http.Header
	// ResponseHeaders is written by the handler. Every value is added to the
	// outgoing response when the dispatch succeeds.
	ResponseHeaders http.Header
	// User is the resolved caller, nil when anonymous.
	User *domain.Identity
	// RequestID correlates log lines for this request.
	RequestID string
}

// RequireUser returns the caller or ErrNoAccess when the request is anonymous.
func (c *Context) RequireUser() (*domain.Identity, error) {
	if c == nil || c.User == nil {
		return nil, NoAccess("authentication required")
	}
	return c.User, nil
}

// RequirePrivilege returns ErrNoAccess unless the caller holds p.
func (c *Context) RequirePrivilege(p domain.Privilege) error {
	user, err := c.RequireUser()
	if err != nil {
		return err
	}
	if !user.Can(p) {
		return NoAccess("missing privilege " + strings.Join(p.Names(), ","))
	}
	return nil
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestOrigin(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimRight(configured, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}
