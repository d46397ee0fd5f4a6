package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

const (
	// LeaderboardSize is how many users the leaderboard shows.
	LeaderboardSize = 10
	// WinnerMinScans is the raffle eligibility threshold.
	WinnerMinScans = 3
)

// StatsService exposes the read-only analytics. The repository does the
// aggregation; this layer owns presentation details (hour-range labels,
// clock formats) and the random winner draw.
type StatsService struct {
	stats  repository.StatsRepository
	logger *slog.Logger

	// intN is rand.IntN, swapped for a deterministic function in tests.
	intN func(n int) int
}

// NewStatsService creates a StatsService with its dependencies.
func NewStatsService(stats repository.StatsRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		stats:  stats,
		logger: logger,
		intN:   rand.Intn,
	}
}

// ScanStats returns grouped scan frequencies with optional filters.
func (s *StatsService) ScanStats(ctx context.Context, filter repository.StatsFilter) ([]model.ScanStat, error) {
	filter.ActivityName = strings.TrimSpace(filter.ActivityName)
	filter.ActivityCategory = strings.TrimSpace(filter.ActivityCategory)

	stats, err := s.stats.ScanStats(ctx, filter)
	if err != nil {
		s.logger.Error("failed to query scan stats", slog.String("error", err.Error()))
		return nil, fmt.Errorf("querying scan stats: %w", err)
	}
	return stats, nil
}

// ScanTimeline returns one activity's hourly scan counts, oldest first.
// An activity with no scans at all is a not-found failure, matching the
// "is this activity real" semantics of the endpoint.
func (s *StatsService) ScanTimeline(ctx context.Context, activityName string) ([]model.TimelineEntry, error) {
	activityName = strings.TrimSpace(activityName)
	if activityName == "" {
		return nil, apperror.ValidationFailed("activity_name", "activity_name is required")
	}

	buckets, err := s.stats.ScanTimeline(ctx, activityName)
	if err != nil {
		return nil, fmt.Errorf("querying timeline for %q: %w", activityName, err)
	}
	if len(buckets) == 0 {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "no scan data found for this activity",
		}
	}

	entries := make([]model.TimelineEntry, 0, len(buckets))
	for _, b := range buckets {
		entries = append(entries, model.TimelineEntry{
			TimeSlot:  b.Hour.Format("2006-01-02T15:04:05"),
			ScanCount: b.Count,
		})
	}
	return entries, nil
}

// Leaderboard returns the top 10 users by scan count, descending.
func (s *StatsService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	entries, err := s.stats.Leaderboard(ctx, LeaderboardSize)
	if err != nil {
		s.logger.Error("failed to query leaderboard", slog.String("error", err.Error()))
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	return entries, nil
}

// PopularActivities returns activities ranked by total scan count.
func (s *StatsService) PopularActivities(ctx context.Context) ([]model.PopularActivity, error) {
	activities, err := s.stats.PopularActivities(ctx)
	if err != nil {
		s.logger.Error("failed to query popular activities", slog.String("error", err.Error()))
		return nil, fmt.Errorf("querying popular activities: %w", err)
	}
	return activities, nil
}

// PeakTimes returns all-time hourly scan counts keyed by an hour-range
// label like "02 PM - 03 PM". The result keeps the repository's ascending
// time order; model.PeakTimes preserves it through JSON serialization.
func (s *StatsService) PeakTimes(ctx context.Context) (model.PeakTimes, error) {
	buckets, err := s.stats.PeakTimes(ctx)
	if err != nil {
		s.logger.Error("failed to query peak times", slog.String("error", err.Error()))
		return nil, fmt.Errorf("querying peak times: %w", err)
	}

	peaks := make(model.PeakTimes, 0, len(buckets))
	for _, b := range buckets {
		peaks = append(peaks, model.PeakTime{Label: hourRangeLabel(b.Hour), Count: b.Count})
	}
	return peaks, nil
}

// hourRangeLabel renders an hour bucket as a 12-hour clock range,
// e.g. 14:00 → "02 PM - 03 PM".
func hourRangeLabel(hour time.Time) string {
	return hour.Format("03 PM") + " - " + hour.Add(time.Hour).Format("03 PM")
}

// ActivityLog returns one user's scan history as (activity, clock time)
// entries, oldest first.
func (s *StatsService) ActivityLog(ctx context.Context, userID int64) ([]model.ActivityLogEntry, error) {
	scans, err := s.stats.ActivityLog(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("querying activity log for user %d: %w", userID, err)
	}

	entries := make([]model.ActivityLogEntry, 0, len(scans))
	for _, sc := range scans {
		entries = append(entries, model.ActivityLogEntry{
			Activity: sc.ActivityName,
			Time:     sc.ScannedAt.Format("03:04 PM"),
		})
	}
	return entries, nil
}

// RandomWinner draws one user uniformly from everyone with at least
// WinnerMinScans scans. Not-found when nobody qualifies.
func (s *StatsService) RandomWinner(ctx context.Context) (*model.Winner, error) {
	eligible, err := s.stats.EligibleWinners(ctx, WinnerMinScans)
	if err != nil {
		return nil, fmt.Errorf("querying eligible winners: %w", err)
	}
	if len(eligible) == 0 {
		return nil, &apperror.AppError{
			Err:     apperror.ErrNotFound,
			Message: "no eligible users found",
		}
	}

	winner := eligible[s.intN(len(eligible))]

	s.logger.Info("random winner drawn",
		slog.Int64("userID", winner.UserID),
		slog.Int("eligible", len(eligible)),
	)
	return &winner, nil
}
