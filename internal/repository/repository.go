// Package repository declares the persistence interfaces the service layer
// programs against. The sqlite subpackage provides the concrete
// implementation; tests substitute in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/hackathon-api/internal/model"
)

// StatsFilter narrows the grouped scan-stats query. MinFrequency <= 0 means
// no lower bound; a nil MaxFrequency means no upper bound; empty strings
// disable the equality filters.
type StatsFilter struct {
	MinFrequency     int
	MaxFrequency     *int
	ActivityName     string
	ActivityCategory string
}

type UserRepository interface {
	// Create inserts the user and assigns its ID. The first user ever
	// inserted is granted the admin flag; the count check and the insert
	// share one transaction. A duplicate email or badge code yields a
	// conflict error.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByBadge(ctx context.Context, badgeCode string) (*model.User, error)
	// List returns all users with their scans attached (explicit two-step
	// fetch, no per-row queries).
	List(ctx context.Context) ([]model.User, error)
	// Update persists name, phone, is_admin and the nullable updated_at
	// marker for an existing user.
	Update(ctx context.Context, user *model.User) error
	// Delete removes the user and all of their scans in one transaction.
	Delete(ctx context.Context, id int64) error
}

type ScanRepository interface {
	// Create inserts the scan and assigns its ID. An unknown user yields a
	// not-found error (foreign keys are enforced).
	Create(ctx context.Context, scan *model.Scan) error
	// List returns all scans, optionally filtered by activity category
	// ("" = no filter).
	List(ctx context.Context, activityCategory string) ([]model.Scan, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Scan, error)
	// HasActivity reports whether the user already has a scan for the named
	// activity. Used for the one-per-user snack claim.
	HasActivity(ctx context.Context, userID int64, activityName string) (bool, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.Connection) error
}

// StatsRepository covers the read-only aggregations. Everything here is a
// single grouped query — no caller-visible state.
type StatsRepository interface {
	ScanStats(ctx context.Context, filter StatsFilter) ([]model.ScanStat, error)
	// ScanTimeline buckets one activity's scans per clock hour.
	ScanTimeline(ctx context.Context, activityName string) ([]model.HourBucket, error)
	// Leaderboard returns the limit most active users, scan count
	// descending, ties broken by ascending user id.
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	PopularActivities(ctx context.Context) ([]model.PopularActivity, error)
	// PeakTimes buckets all scans per clock hour, ascending in time.
	PeakTimes(ctx context.Context) ([]model.HourBucket, error)
	// ActivityLog returns (activity name, scan time) pairs for one user,
	// oldest first.
	ActivityLog(ctx context.Context, userID int64) ([]model.Scan, error)
	// EligibleWinners returns the users with at least minScans scans.
	EligibleWinners(ctx context.Context, minScans int) ([]model.Winner, error)
}
