package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// ScanService handles activity scans, badge check-in/out, connections and
// the snack claim.
type ScanService struct {
	scans       repository.ScanRepository
	users       repository.UserRepository
	connections repository.ConnectionRepository
	logger      *slog.Logger
}

// NewScanService creates a ScanService with its dependencies.
func NewScanService(
	scans repository.ScanRepository,
	users repository.UserRepository,
	connections repository.ConnectionRepository,
	logger *slog.Logger,
) *ScanService {
	return &ScanService{
		scans:       scans,
		users:       users,
		connections: connections,
		logger:      logger,
	}
}

// ScanInput carries the fields for recording an activity scan.
type ScanInput struct {
	ActivityName     string `json:"activity_name"`
	ActivityCategory string `json:"activity_category"`
}

// Record inserts a scan for the user with a server-side timestamp.
// Scans are immutable — there is no update or delete path.
func (s *ScanService) Record(ctx context.Context, userID int64, in ScanInput) (*model.Scan, error) {
	in.ActivityName = strings.TrimSpace(in.ActivityName)
	in.ActivityCategory = strings.TrimSpace(in.ActivityCategory)

	if in.ActivityName == "" {
		return nil, apperror.ValidationFailed("activity_name", "activity_name is required")
	}
	if in.ActivityCategory == "" {
		return nil, apperror.ValidationFailed("activity_category", "activity_category is required")
	}

	scan := &model.Scan{
		UserID:           userID,
		ActivityName:     in.ActivityName,
		ActivityCategory: in.ActivityCategory,
		ScannedAt:        time.Now().UTC(),
	}

	if err := s.scans.Create(ctx, scan); err != nil {
		return nil, err
	}

	s.logger.Info("scan recorded",
		slog.Int64("userID", userID),
		slog.String("activity", scan.ActivityName),
	)

	return scan, nil
}

// List returns all scans, optionally filtered by activity category.
func (s *ScanService) List(ctx context.Context, activityCategory string) ([]model.Scan, error) {
	scans, err := s.scans.List(ctx, strings.TrimSpace(activityCategory))
	if err != nil {
		s.logger.Error("failed to list scans", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// ListByUser returns one user's scan history. An unknown user yields an
// empty list, matching the listing semantics of the other read endpoints.
func (s *ScanService) ListByUser(ctx context.Context, userID int64) ([]model.Scan, error) {
	scans, err := s.scans.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user scans",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing scans for user %d: %w", userID, err)
	}
	return scans, nil
}

// CheckIn sets the presence marker for the badge holder.
// Fails with a conflict if the marker is already set — the badge must be
// checked out before it can check in again.
func (s *ScanService) CheckIn(ctx context.Context, badgeCode string) (*model.User, error) {
	user, err := s.users.GetByBadge(ctx, badgeCode)
	if err != nil {
		return nil, err
	}
	if user.UpdatedAt != nil {
		return nil, apperror.Conflict("user already checked in")
	}

	now := time.Now().UTC()
	user.UpdatedAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("checking in badge %s: %w", badgeCode, err)
	}

	s.logger.Info("badge checked in", slog.String("badge", badgeCode))
	return user, nil
}

// CheckOut clears the presence marker unconditionally — checking out a badge
// that was never checked in still succeeds.
func (s *ScanService) CheckOut(ctx context.Context, badgeCode string) (*model.User, error) {
	user, err := s.users.GetByBadge(ctx, badgeCode)
	if err != nil {
		return nil, err
	}

	user.UpdatedAt = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("checking out badge %s: %w", badgeCode, err)
	}

	s.logger.Info("badge checked out", slog.String("badge", badgeCode))
	return user, nil
}

// Connect records an undirected edge between two participants. The only
// rule is that a user cannot connect to themself; duplicate edges are
// allowed by design.
func (s *ScanService) Connect(ctx context.Context, userID1, userID2 int64) (*model.Connection, error) {
	if userID1 == userID2 {
		return nil, apperror.ValidationFailed("user_id", "cannot connect a user to themself")
	}

	conn := &model.Connection{UserID1: userID1, UserID2: userID2}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, err
	}

	s.logger.Info("users connected",
		slog.Int64("userID1", userID1),
		slog.Int64("userID2", userID2),
	)
	return conn, nil
}

// ClaimSnack records the one-per-user midnight snack scan.
// A second claim for the same user is a conflict; exactly one snack scan
// row ever exists per user.
func (s *ScanService) ClaimSnack(ctx context.Context, userID int64) (*model.Scan, error) {
	claimed, err := s.scans.HasActivity(ctx, userID, model.SnackActivityName)
	if err != nil {
		return nil, fmt.Errorf("checking snack claim for user %d: %w", userID, err)
	}
	if claimed {
		return nil, apperror.Conflict("midnight snack already claimed")
	}

	scan := &model.Scan{
		UserID:           userID,
		ActivityName:     model.SnackActivityName,
		ActivityCategory: model.SnackActivityCategory,
		ScannedAt:        time.Now().UTC(),
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		return nil, err
	}

	s.logger.Info("midnight snack claimed", slog.Int64("userID", userID))
	return scan, nil
}
