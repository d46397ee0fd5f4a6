package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// StatsStore implements repository.StatsRepository. Everything here is a
// single grouped SELECT — the aggregation work is delegated to SQLite.
type StatsStore struct {
	db *DB
}

// compile-time check that *StatsStore implements repository.StatsRepository
var _ repository.StatsRepository = (*StatsStore)(nil)

// hourBucketExpr truncates scanned_at to the start of its clock hour.
// strftime normalizes any timezone suffix to UTC first, so buckets are
// consistent regardless of how the timestamp was written.
const hourBucketExpr = `strftime('%Y-%m-%dT%H:00:00', scanned_at)`

// ScanStats groups scans by (activity_name, activity_category) and counts
// them, applying optional equality filters and HAVING frequency bounds.
// The WHERE/HAVING clauses are assembled from fixed fragments — user input
// only ever travels through placeholders.
func (s *StatsStore) ScanStats(ctx context.Context, filter repository.StatsFilter) ([]model.ScanStat, error) {
	query := `SELECT activity_name, activity_category, COUNT(*) AS frequency FROM scans`
	args := []any{}

	var where []string
	if filter.ActivityName != "" {
		where = append(where, `activity_name = ?`)
		args = append(args, filter.ActivityName)
	}
	if filter.ActivityCategory != "" {
		where = append(where, `activity_category = ?`)
		args = append(args, filter.ActivityCategory)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}

	query += ` GROUP BY activity_name, activity_category`

	var having []string
	if filter.MinFrequency > 0 {
		having = append(having, `COUNT(*) >= ?`)
		args = append(args, filter.MinFrequency)
	}
	if filter.MaxFrequency != nil {
		having = append(having, `COUNT(*) <= ?`)
		args = append(args, *filter.MaxFrequency)
	}
	if len(having) > 0 {
		query += ` HAVING ` + strings.Join(having, ` AND `)
	}

	query += ` ORDER BY activity_name, activity_category`

	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying scan stats: %w", err)
	}
	defer rows.Close()

	stats := []model.ScanStat{}
	for rows.Next() {
		var st model.ScanStat
		if err := rows.Scan(&st.ActivityName, &st.ActivityCategory, &st.Frequency); err != nil {
			return nil, fmt.Errorf("sqlite: scanning stat row: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stats: %w", err)
	}
	return stats, nil
}

// ScanTimeline buckets one activity's scans per clock hour, oldest first.
func (s *StatsStore) ScanTimeline(ctx context.Context, activityName string) ([]model.HourBucket, error) {
	return s.queryHourBuckets(ctx,
		`SELECT `+hourBucketExpr+` AS time_slot, COUNT(*) AS scan_count
		 FROM scans WHERE activity_name = ?
		 GROUP BY time_slot ORDER BY time_slot ASC`,
		activityName,
	)
}

// PeakTimes buckets every scan per clock hour, oldest first.
func (s *StatsStore) PeakTimes(ctx context.Context) ([]model.HourBucket, error) {
	return s.queryHourBuckets(ctx,
		`SELECT `+hourBucketExpr+` AS time_slot, COUNT(*) AS scan_count
		 FROM scans GROUP BY time_slot ORDER BY time_slot ASC`,
	)
}

func (s *StatsStore) queryHourBuckets(ctx context.Context, query string, args ...any) ([]model.HourBucket, error) {
	rows, err := s.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying hour buckets: %w", err)
	}
	defer rows.Close()

	buckets := []model.HourBucket{}
	for rows.Next() {
		var slot string
		var count int
		if err := rows.Scan(&slot, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning bucket row: %w", err)
		}
		// strftime output carries no zone marker; the values are UTC.
		hour, err := time.Parse("2006-01-02T15:04:05", slot)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing time slot %q: %w", slot, err)
		}
		buckets = append(buckets, model.HourBucket{Hour: hour.UTC(), Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating buckets: %w", err)
	}
	return buckets, nil
}

// Leaderboard returns the limit most active users, scan count descending.
// Ties are broken by ascending user id so repeated queries return the same
// ordering.
func (s *StatsStore) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT u.id, u.name, COUNT(s.id) AS scan_count
		 FROM users u JOIN scans s ON s.user_id = u.id
		 GROUP BY u.id, u.name
		 ORDER BY scan_count DESC, u.id ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Name, &e.Scans); err != nil {
			return nil, fmt.Errorf("sqlite: scanning leaderboard row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating leaderboard: %w", err)
	}
	return entries, nil
}

// PopularActivities returns every activity ranked by total scan count,
// descending, name ascending on ties.
func (s *StatsStore) PopularActivities(ctx context.Context) ([]model.PopularActivity, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT activity_name, COUNT(*) AS scan_count
		 FROM scans GROUP BY activity_name
		 ORDER BY scan_count DESC, activity_name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying popular activities: %w", err)
	}
	defer rows.Close()

	activities := []model.PopularActivity{}
	for rows.Next() {
		var a model.PopularActivity
		if err := rows.Scan(&a.ActivityName, &a.Scans); err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}
	return activities, nil
}

// ActivityLog returns one user's scans oldest first, for the chronological
// history view.
func (s *StatsStore) ActivityLog(ctx context.Context, userID int64) ([]model.Scan, error) {
	return s.db.Scans().ListByUser(ctx, userID)
}

// EligibleWinners returns every user with at least minScans scans. The
// random draw happens in the service so the selection is uniform and
// testable (the repository stays deterministic).
func (s *StatsStore) EligibleWinners(ctx context.Context, minScans int) ([]model.Winner, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT u.id, u.name, u.badge_code
		 FROM users u JOIN scans s ON s.user_id = u.id
		 GROUP BY u.id, u.name, u.badge_code
		 HAVING COUNT(s.id) >= ?
		 ORDER BY u.id ASC`,
		minScans,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying eligible winners: %w", err)
	}
	defer rows.Close()

	winners := []model.Winner{}
	for rows.Next() {
		var w model.Winner
		if err := rows.Scan(&w.UserID, &w.Name, &w.BadgeCode); err != nil {
			return nil, fmt.Errorf("sqlite: scanning winner row: %w", err)
		}
		winners = append(winners, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating winners: %w", err)
	}
	return winners, nil
}
