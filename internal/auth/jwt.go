// Package auth provides JWT issuance/validation, password hashing, and the
// authentication middleware.
//
// The API issues two token kinds from the same HMAC secret: short-lived
// access tokens and long-lived refresh tokens. Each carries a unique jti so
// logout can revoke an individual token via the persisted denylist without
// invalidating every session.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkarpinski/blog-api/internal/apperror"
)

const issuer = "blog-api"

// TokenUse distinguishes access tokens from refresh tokens. A refresh token
// is only accepted by the refresh endpoint, never by the auth middleware.
type TokenUse string

const (
	TokenUseAccess  TokenUse = "access"
	TokenUseRefresh TokenUse = "refresh"
)

// Identity is the verified content of a token: who it belongs to, which
// token it is (for revocation), and when it stops mattering (for denylist
// pruning).
type Identity struct {
	UserID    string
	JTI       string
	Use       TokenUse
	ExpiresAt time.Time
}

type claims struct {
	Use TokenUse `json:"use"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies JWTs with an HMAC secret.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService. The secret should be at least
// 32 bytes of random data in production; anything under 16 is refused.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 720 * time.Hour
	}
	return &TokenService{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}, nil
}

// Generate creates and signs a token of the given use for userID.
// The jti is a fresh uuid; the expiry comes from the configured TTLs.
func (s *TokenService) Generate(userID string, use TokenUse) (string, error) {
	now := time.Now()
	ttl := s.accessTTL
	if use == TokenUseRefresh {
		ttl = s.refreshTTL
	}

	c := claims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a JWT string and checks it is the wanted
// kind. Returns apperror.ErrUnauthenticated for any caller-facing failure
// (expired, tampered, wrong use, missing subject).
func (s *TokenService) Validate(tokenStr string, want TokenUse) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperror.Unauthenticated("token expired")
		}
		return nil, apperror.Unauthenticated("invalid token")
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, apperror.Unauthenticated("invalid token claims")
	}
	if c.Subject == "" || c.ID == "" {
		return nil, apperror.Unauthenticated("token has no subject")
	}
	if c.Use != want {
		return nil, apperror.Unauthenticated(fmt.Sprintf("%s token required", want))
	}

	return &Identity{
		UserID:    c.Subject,
		JTI:       c.ID,
		Use:       c.Use,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
