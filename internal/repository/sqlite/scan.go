package sqlite

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// ScanStore implements repository.ScanRepository.
type ScanStore struct {
	db *DB
}

// ConnectionStore implements repository.ConnectionRepository.
type ConnectionStore struct {
	db *DB
}

// compile-time interface checks
var (
	_ repository.ScanRepository       = (*ScanStore)(nil)
	_ repository.ConnectionRepository = (*ConnectionStore)(nil)
)

// Create inserts a new scan and assigns its ID.
// Foreign keys are enforced, so a scan for a nonexistent user comes back as
// a not-found error rather than a dangling row.
func (s *ScanStore) Create(ctx context.Context, scan *model.Scan) error {
	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO scans (user_id, activity_name, activity_category, scanned_at)
		 VALUES (?, ?, ?, ?)`,
		scan.UserID,
		scan.ActivityName,
		scan.ActivityCategory,
		scan.ScannedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", strconv.FormatInt(scan.UserID, 10))
		}
		return fmt.Errorf("sqlite: inserting scan (userID=%d): %w", scan.UserID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted scan id: %w", err)
	}
	scan.ID = id
	return nil
}

// List returns all scans, newest first, optionally filtered by activity
// category ("" = no filter).
func (s *ScanStore) List(ctx context.Context, activityCategory string) ([]model.Scan, error) {
	query := `SELECT id, user_id, activity_name, activity_category, scanned_at FROM scans`
	args := []any{}
	if activityCategory != "" {
		query += ` WHERE activity_category = ?`
		args = append(args, activityCategory)
	}
	query += ` ORDER BY scanned_at DESC, id DESC`

	return s.queryScans(ctx, query, args...)
}

// ListByUser returns one user's scans, oldest first.
func (s *ScanStore) ListByUser(ctx context.Context, userID int64) ([]model.Scan, error) {
	return s.queryScans(ctx,
		`SELECT id, user_id, activity_name, activity_category, scanned_at
		 FROM scans WHERE user_id = ? ORDER BY scanned_at ASC, id ASC`,
		userID,
	)
}

// HasActivity reports whether the user already has a scan for the named
// activity. Backs the one-per-user snack claim.
func (s *ScanStore) HasActivity(ctx context.Context, userID int64, activityName string) (bool, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scans WHERE user_id = ? AND activity_name = ?`,
		userID, activityName,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking activity %q for user %d: %w", activityName, userID, err)
	}
	return count > 0, nil
}

func (s *ScanStore) queryScans(ctx context.Context, query string, args ...any) ([]model.Scan, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying scans: %w", err)
	}
	defer rows.Close()

	scans := []model.Scan{}
	for rows.Next() {
		var sc model.Scan
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.ActivityName, &sc.ActivityCategory, &sc.ScannedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning scan row: %w", err)
		}
		scans = append(scans, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating scans: %w", err)
	}
	return scans, nil
}

// Create inserts an edge between two users. No duplicate check — the same
// pair can connect any number of times (people re-scan each other at
// events). Unknown users fail the FK check and surface as not-found.
func (s *ConnectionStore) Create(ctx context.Context, conn *model.Connection) error {
	res, err := s.db.conn.ExecContext(ctx,
		`INSERT INTO connections (user_id1, user_id2) VALUES (?, ?)`,
		conn.UserID1, conn.UserID2,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", fmt.Sprintf("%d or %d", conn.UserID1, conn.UserID2))
		}
		return fmt.Errorf("sqlite: inserting connection (%d, %d): %w", conn.UserID1, conn.UserID2, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted connection id: %w", err)
	}
	conn.ID = id
	return nil
}
