// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces (not concrete sqlite types), return
// domain errors (not HTTP status codes), and never touch the request or
// response. The handler translates domain errors to HTTP at the boundary.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/auth"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// UserService handles registration and user lifecycle.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewUserService creates a UserService with its dependencies.
func NewUserService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput carries the fields required to create an account.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BadgeCode string `json:"badge_code"`
	Password  string `json:"password"`
}

// List returns every user with their scans attached.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// Get returns one user with their scans.
// Returns apperror.ErrNotFound if the id is unknown.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Register validates the input, hashes the password and inserts the user.
//
// ADMIN BOOTSTRAP:
// The repository grants the admin flag to the very first user inserted,
// inside the same transaction as the insert. Every later registration is a
// regular account; further admins come only through the privileged
// promotion route.
//
// The registration timestamp doubles as the check-in marker, so a freshly
// registered user starts out checked in — badge check-out clears it.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.BadgeCode = strings.TrimSpace(in.BadgeCode)

	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if in.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperror.ValidationFailed("email", "email is not a valid address")
	}
	if in.Phone == "" {
		return nil, apperror.ValidationFailed("phone", "phone is required")
	}
	if in.BadgeCode == "" {
		return nil, apperror.ValidationFailed("badge_code", "badge_code is required")
	}
	if in.Password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		BadgeCode:    in.BadgeCode,
		PasswordHash: hash,
		UpdatedAt:    &now,
		IsActive:     true,
		Scans:        []model.Scan{},
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Conflict (duplicate email/badge) is a normal outcome, not a
		// server failure — only log the unexpected ones.
		if !isAppError(err) {
			s.logger.Error("failed to create user",
				slog.String("email", in.Email),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
		slog.Bool("isAdmin", user.IsAdmin),
	)

	return user, nil
}

// Update applies a partial profile update. Only name and phone are
// updatable; a nil field means "leave unchanged". The update refreshes the
// updated_at timestamp.
func (s *UserService) Update(ctx context.Context, id int64, name, phone *string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperror.ValidationFailed("name", "name must not be empty")
		}
		user.Name = trimmed
	}
	if phone != nil {
		user.Phone = strings.TrimSpace(*phone)
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now

	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error("failed to update user",
			slog.Int64("userID", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return user, nil
}

// Delete removes a user and all of their scans atomically. Authorization
// (admin-only) is enforced at the API boundary, not here.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("userID", id))
	return nil
}

// Promote grants the admin flag to an existing user.
// Promoting an admin again is rejected as a validation error.
func (s *UserService) Promote(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin {
		return nil, apperror.ValidationFailed("id", "user is already an admin")
	}

	user.IsAdmin = true
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("promoting user: %w", err)
	}

	s.logger.Info("user promoted to admin", slog.Int64("userID", id))
	return user, nil
}

// isAppError reports whether err carries one of the domain sentinels.
func isAppError(err error) bool {
	var appErr *apperror.AppError
	return errors.As(err, &appErr)
}
