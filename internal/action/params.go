package action

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// RouteParam is the value of one dynamic path segment: a single string, or
// an ordered list of strings for a catch-all segment.
type RouteParam struct {
	values []string
	multi  bool
}

// Single builds the value of an ordinary path segment.
func Single(v string) RouteParam {
	return RouteParam{values: []string{v}}
}

// Multi builds the value of a catch-all segment.
func Multi(v ...string) RouteParam {
	return RouteParam{values: append([]string{}, v...), multi: true}
}

// Value returns the payload form of p: a string or a []string.
func (p RouteParam) Value() any {
	if p.multi {
		return append([]string{}, p.values...)
	}
	if len(p.values) == 0 {
		return ""
	}
	return p.values[0]
}

// RouteParams maps path segment names onto their values.
type RouteParams map[string]RouteParam

// mergeInto fills the keys of payload that are still absent. Values that
// came from the query string or body always win.
func (p RouteParams) mergeInto(payload map[string]any) {
	for name, value := range p {
		if _, exists := payload[name]; exists {
			continue
		}
		payload[name] = value.Value()
	}
}

// ChiParams collects the URL parameters chi matched for r. The "*" wildcard
// is exposed under catchAll, split on "/", and dropped when catchAll is
// empty. When mounted routers repeat a key the innermost value wins, as it
// does for chi.URLParam. Values are unescaped only when chi matched against
// the escaped RawPath; otherwise they are already decoded.
func ChiParams(r *http.Request, catchAll string) RouteParams {
	params := RouteParams{}
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	unescape := func(s string) string { return s }
	if r.URL.RawPath != "" {
		unescape = pathUnescape
	}
	for i, key := range rctx.URLParams.Keys {
		if i >= len(rctx.URLParams.Values) {
			break
		}
		raw := rctx.URLParams.Values[i]
		if key == "*" {
			if catchAll == "" {
				continue
			}
			var segments []string
			for _, s := range strings.Split(raw, "/") {
				if s != "" {
					segments = append(segments, unescape(s))
				}
			}
			params[catchAll] = Multi(segments...)
			continue
		}
		params[key] = Single(unescape(raw))
	}
	return params
}

func pathUnescape(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}
