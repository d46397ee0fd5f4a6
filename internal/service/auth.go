// Package service — authentication business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/auth"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// AuthService handles credential exchange and token-to-user resolution.
//
//	AuthHandler (HTTP) → AuthService (rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) + PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// LoginResult bundles the authenticated user and the issued bearer token.
type LoginResult struct {
	User  *model.User
	Token string
}

// Login verifies the email/password pair and issues a bearer token.
//
// UNIFORM FAILURE:
// An unknown email and a wrong password both return the same unauthorized
// error. Callers (and attackers probing the login form) cannot tell which
// check failed. bcrypt verification is constant-time per attempt, so the
// response doesn't leak through timing on the comparison either.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("authenticating %s: %w", email, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", email, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// UserByEmail resolves a token subject to the full user record.
// Used by the auth guards after TokenService.Validate has verified the
// signature and expiry.
func (s *AuthService) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// ValidateToken validates a bearer token string and returns the subject
// email it encodes. Thin delegation so callers only import the service.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	email, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", apperror.Unauthorized("invalid token")
	}
	return email, nil
}
