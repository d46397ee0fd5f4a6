// Package auth provides JWT token generation and validation for the API.
//
// AUTHENTICATION FLOW:
// 1. User POSTs email+password to /login
// 2. Server verifies the bcrypt hash and issues a JWT access token
// 3. On subsequent requests, the client sends "Authorization: Bearer <token>"
// 4. Middleware validates the JWT and sets the subject email in the request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"sub":"user@example.com","exp":1234567890}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// The server can verify the signature without any DB lookup — just the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the access token lifetime used when no explicit TTL is
// configured.
const DefaultTokenTTL = 30 * time.Minute

const issuer = "hackathon-api"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The secret is
// injected at startup (see server.Config) — never hard-coded.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A ttl of zero selects DefaultTokenTTL.
//
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt.
//
// We use "sub" (Subject) to store the user's email — the login identifier.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new JWT access token for the given subject
// email, using the configured lifetime.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key for signing
// and verifying. Fine for a single-server deployment.
func (s *TokenService) Generate(email string) (string, error) {
	return s.GenerateWithDuration(email, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(email string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
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

// Validate parses and verifies a JWT string.
// Returns the subject email if the token is valid.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HMAC
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
		// Translate jwt library errors into cleaner messages
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	email := c.Subject
	if email == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return email, nil
}
