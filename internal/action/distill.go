package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// distill assembles the raw payload for r. Read-only methods use the query
// string alone. Body-carrying methods use the JSON body alone.
func distill(r *http.Request, maxBodyBytes int64, log *slog.Logger) (map[string]any, error) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return distillQuery(r.URL.RawQuery, log), nil
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return distillBody(r, maxBodyBytes)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, r.Method)
	}
}

// distillQuery expands dotted keys into nested objects. Pairs are applied in
// the order they appear; a pair that collides with one already applied is
// dropped.
func distillQuery(rawQuery string, log *slog.Logger) map[string]any {
	payload := map[string]any{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			log.Warn("dropping undecodable query key", slog.String("key", rawKey))
			continue
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			log.Warn("dropping undecodable query value", slog.String("key", key))
			continue
		}
		if err := setPath(payload, strings.Split(key, "."), value); err != nil {
			log.Warn("dropping query parameter",
				slog.String("key", key),
				slog.String("reason", err.Error()))
		}
	}
	return payload
}

var (
	errEmptySegment = errors.New("empty path segment")
	errConflict     = errors.New("conflicts with an earlier parameter")
	errDuplicate    = errors.New("duplicate parameter")
)

func setPath(root map[string]any, path []string, value string) error {
	for _, segment := range path {
		if segment == "" {
			return errEmptySegment
		}
	}

	node := root
	for _, segment := range path[:len(path)-1] {
		switch existing := node[segment].(type) {
		case nil:
			child := map[string]any{}
			node[segment] = child
			node = child
		case map[string]any:
			node = existing
		default:
			return errConflict
		}
	}

	leaf := path[len(path)-1]
	switch node[leaf].(type) {
	case nil:
		node[leaf] = value
		return nil
	case map[string]any:
		return errConflict
	default:
		return errDuplicate
	}
}

func distillBody(r *http.Request, maxBodyBytes int64) (map[string]any, error) {
	if r.Body == nil {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, tooLarge.Limit)
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedBody)
	}
	payload, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}
	return payload, nil
}
