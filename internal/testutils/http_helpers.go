package testutils

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateTestServer starts an httptest server that is closed when the test
// ends.
func CreateTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// Do sends a request with an optional JSON body and an optional bearer
// token, and returns the status and the raw response body.
func Do(t *testing.T, server *httptest.Server, method, path, body, token string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// AssertFailure checks a failure envelope: the status, success=false, and
// an error containing errorPart. An empty errorPart requires the body to
// carry no error at all.
func AssertFailure(t *testing.T, status int, raw []byte, expectedStatus int, errorPart string) {
	t.Helper()

	assert.Equal(t, expectedStatus, status, "body: %s", raw)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "body: %s", raw)
	assert.Equal(t, false, body["success"])
	if errorPart == "" {
		assert.NotContains(t, body, "error")
		return
	}
	assert.Contains(t, body["error"], errorPart)
}
