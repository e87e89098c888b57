package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/domain"
)

const testSecret = "thisisasecretkeythatis32charslong!!"

var organiser = domain.Identity{
	UserID:     42,
	Username:   "morgan",
	Privileges: domain.PrivilegeEventHotelManagement | domain.PrivilegeEventAdministrator,
}

func newTestTokens(t *testing.T, now time.Time) *Tokens {
	t.Helper()
	tokens, err := NewTokens(config.AuthConfig{
		JWTSecret:     testSecret,
		ClockSkew:     30 * time.Second,
		TokenLifetime: time.Hour,
	})
	require.NoError(t, err)
	tokens.timeFunc = func() time.Time { return now }
	return tokens
}

func TestNewTokens_WeakSecret(t *testing.T) {
	_, err := NewTokens(config.AuthConfig{JWTSecret: "short"})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestIssueAndVerify(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, now)
	ctx := context.Background()

	token, err := tokens.Issue(ctx, organiser)
	require.NoError(t, err)

	id, err := tokens.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, &organiser, id)
}

func TestVerify_Failures(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	token, err := newTestTokens(t, issuedAt).Issue(ctx, organiser)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		_, err := newTestTokens(t, issuedAt.Add(2*time.Hour)).Verify(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("within clock skew", func(t *testing.T) {
		_, err := newTestTokens(t, issuedAt.Add(time.Hour+10*time.Second)).Verify(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("not yet valid", func(t *testing.T) {
		_, err := newTestTokens(t, issuedAt.Add(-time.Hour)).Verify(ctx, token)
		assert.ErrorIs(t, err, ErrTokenNotYetValid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokens(config.AuthConfig{JWTSecret: "anothersecretkeythatis32charslong!", TokenLifetime: time.Hour})
		require.NoError(t, err)
		other.timeFunc = func() time.Time { return issuedAt }
		_, err = other.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newTestTokens(t, issuedAt).Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown privilege", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
			UserID:     1,
			Privileges: []string{"root"},
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = newTestTokens(t, issuedAt).Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing expiry", func(t *testing.T) {
		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{UserID: 1}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = newTestTokens(t, issuedAt).Verify(ctx, forged)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResolver(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tokens := newTestTokens(t, now)
	token, err := tokens.Issue(context.Background(), organiser)
	require.NoError(t, err)

	resolver := NewResolver(tokens, "volunteer_session")

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		want    *domain.Identity
	}{
		{"no credentials", func(*http.Request) {}, nil},
		{"bearer token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, &organiser},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+token) }, &organiser},
		{"session cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "volunteer_session", Value: token})
		}, &organiser},
		{"other cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "theme", Value: token})
		}, nil},
		{"basic auth", func(r *http.Request) { r.SetBasicAuth("morgan", "secret") }, nil},
		{"tampered token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token+"x") }, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/events/2025/hotels", nil)
			tc.prepare(req)

			id, err := resolver.ResolveIdentity(req.Context(), req)

			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}
