package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/volunteerhq/volunteer-api/internal/config"
	"github.com/volunteerhq/volunteer-api/internal/domain"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
)

const minSecretLength = 32

// claims is the payload of a session token.
type claims struct {
	UserID     int64    `json:"uid"`
	Username   string   `json:"name"`
	Privileges []string `json:"priv,omitempty"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens with HMAC-SHA256.
type Tokens struct {
	signingKey []byte
	lifetime   time.Duration
	clockSkew  time.Duration
	timeFunc   func() time.Time
}

// NewTokens builds a Tokens from the auth configuration.
func NewTokens(cfg config.AuthConfig) (*Tokens, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, ErrWeakSecret
	}
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = 12 * time.Hour
	}
	return &Tokens{
		signingKey: []byte(cfg.JWTSecret),
		lifetime:   lifetime,
		clockSkew:  cfg.ClockSkew,
		timeFunc:   time.Now,
	}, nil
}

// Issue returns a signed token for id. Sessions are minted by the login
// service that shares the secret, so in this server Issue serves tests and
// operator tooling that needs a token for a known identity.
func (s *Tokens) Issue(ctx context.Context, id domain.Identity) (string, error) {
	now := s.timeFunc()
	c := claims{
		UserID:     id.UserID,
		Username:   id.Username,
		Privileges: id.Privileges.Names(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign session token",
			"error", err,
			"user_id", id.UserID)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and validity window of token and returns the
// identity it carries.
func (s *Tokens) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	parsed, err := jwt.ParseWithClaims(token, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("session token expired", "error", err)
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("session token not yet valid", "error", err)
			return nil, ErrTokenNotYetValid
		default:
			log.Debug("session token rejected", "error", err)
			return nil, ErrInvalidToken
		}
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	privileges, err := domain.ParsePrivileges(c.Privileges)
	if err != nil {
		log.Debug("session token carries unknown privilege", "error", err)
		return nil, ErrInvalidToken
	}
	return &domain.Identity{
		UserID:     c.UserID,
		Username:   c.Username,
		Privileges: privileges,
	}, nil
}
