package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// =========================================================================
// MOCK STATS REPOSITORY
// =========================================================================
//
// The aggregation itself is exercised in the sqlite package against a real
// database; here the fake returns canned rows so the tests focus on what
// the service adds: formatting, emptiness handling, and the random draw.

type mockStatsRepo struct {
	stats    []model.ScanStat
	timeline []model.HourBucket
	board    []model.LeaderboardEntry
	popular  []model.PopularActivity
	peaks    []model.HourBucket
	log      []model.Scan
	winners  []model.Winner
}

func (m *mockStatsRepo) ScanStats(_ context.Context, _ repository.StatsFilter) ([]model.ScanStat, error) {
	return m.stats, nil
}

func (m *mockStatsRepo) ScanTimeline(_ context.Context, _ string) ([]model.HourBucket, error) {
	return m.timeline, nil
}

func (m *mockStatsRepo) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit < len(m.board) {
		return m.board[:limit], nil
	}
	return m.board, nil
}

func (m *mockStatsRepo) PopularActivities(_ context.Context) ([]model.PopularActivity, error) {
	return m.popular, nil
}

func (m *mockStatsRepo) PeakTimes(_ context.Context) ([]model.HourBucket, error) {
	return m.peaks, nil
}

func (m *mockStatsRepo) ActivityLog(_ context.Context, _ int64) ([]model.Scan, error) {
	return m.log, nil
}

func (m *mockStatsRepo) EligibleWinners(_ context.Context, _ int) ([]model.Winner, error) {
	return m.winners, nil
}

func newTestStatsService(repo *mockStatsRepo) *StatsService {
	return NewStatsService(repo, testLogger())
}

// =========================================================================
// TIMELINE TESTS
// =========================================================================

func TestScanTimeline_FormatsSlots(t *testing.T) {
	repo := &mockStatsRepo{timeline: []model.HourBucket{
		{Hour: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), Count: 7},
	}}
	svc := newTestStatsService(repo)

	entries, err := svc.ScanTimeline(context.Background(), "Workshop")
	if err != nil {
		t.Fatalf("ScanTimeline() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].TimeSlot != "2026-03-01T14:00:00" {
		t.Errorf("TimeSlot = %q, want %q", entries[0].TimeSlot, "2026-03-01T14:00:00")
	}
	if entries[0].ScanCount != 7 {
		t.Errorf("ScanCount = %d, want 7", entries[0].ScanCount)
	}
}

func TestScanTimeline_NoDataIsNotFound(t *testing.T) {
	svc := newTestStatsService(&mockStatsRepo{})

	_, err := svc.ScanTimeline(context.Background(), "Karaoke")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestScanTimeline_EmptyNameRejected(t *testing.T) {
	svc := newTestStatsService(&mockStatsRepo{})

	_, err := svc.ScanTimeline(context.Background(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// PEAK TIMES TESTS
// =========================================================================

func TestPeakTimes_HourRangeLabels(t *testing.T) {
	repo := &mockStatsRepo{peaks: []model.HourBucket{
		{Hour: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), Count: 12},
		{Hour: time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC), Count: 3},
	}}
	svc := newTestStatsService(repo)

	peaks, err := svc.PeakTimes(context.Background())
	if err != nil {
		t.Fatalf("PeakTimes() error = %v", err)
	}
	if len(peaks) != 2 {
		t.Fatalf("len(peaks) = %d, want 2", len(peaks))
	}

	if peaks[0].Label != "02 PM - 03 PM" || peaks[0].Count != 12 {
		t.Errorf("peaks[0] = %+v, want 02 PM - 03 PM with count 12", peaks[0])
	}
	// Crossing midnight: 23:00 → "11 PM - 12 AM"
	if peaks[1].Label != "11 PM - 12 AM" || peaks[1].Count != 3 {
		t.Errorf("peaks[1] = %+v, want 11 PM - 12 AM with count 3", peaks[1])
	}
}

// The response must serialize in ascending time order. A map would let
// encoding/json sort the labels lexically, putting afternoon buckets in
// front of morning ones.
func TestPeakTimes_JSONKeepsTimeOrder(t *testing.T) {
	repo := &mockStatsRepo{peaks: []model.HourBucket{
		{Hour: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), Count: 1},
		{Hour: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC), Count: 2},
		{Hour: time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC), Count: 3},
	}}
	svc := newTestStatsService(repo)

	peaks, err := svc.PeakTimes(context.Background())
	if err != nil {
		t.Fatalf("PeakTimes() error = %v", err)
	}

	raw, err := json.Marshal(peaks)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(raw)

	want := `{"09 AM - 10 AM":1,"11 AM - 12 PM":2,"02 PM - 03 PM":3}`
	if body != want {
		t.Errorf("serialized peaks = %s, want %s", body, want)
	}

	// And it must still parse as a plain JSON object for clients.
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded["09 AM - 10 AM"] != 1 {
		t.Errorf(`decoded["09 AM - 10 AM"] = %d, want 1`, decoded["09 AM - 10 AM"])
	}
}

// =========================================================================
// ACTIVITY LOG TESTS
// =========================================================================

func TestActivityLog_FormatsClockTimes(t *testing.T) {
	repo := &mockStatsRepo{log: []model.Scan{
		{ActivityName: "Opening Ceremony", ScannedAt: time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)},
		{ActivityName: "Midnight Snack", ScannedAt: time.Date(2026, 3, 2, 0, 15, 0, 0, time.UTC)},
	}}
	svc := newTestStatsService(repo)

	entries, err := svc.ActivityLog(context.Background(), 1)
	if err != nil {
		t.Fatalf("ActivityLog() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Time != "09:05 AM" {
		t.Errorf("Time = %q, want %q", entries[0].Time, "09:05 AM")
	}
	if entries[1].Time != "12:15 AM" {
		t.Errorf("Time = %q, want %q", entries[1].Time, "12:15 AM")
	}
}

// =========================================================================
// RANDOM WINNER TESTS
// =========================================================================

func TestRandomWinner_DrawsFromEligible(t *testing.T) {
	repo := &mockStatsRepo{winners: []model.Winner{
		{UserID: 1, Name: "alice", BadgeCode: "badge-a"},
		{UserID: 2, Name: "bob", BadgeCode: "badge-b"},
		{UserID: 3, Name: "carol", BadgeCode: "badge-c"},
	}}
	svc := newTestStatsService(repo)
	svc.intN = func(n int) int { return n - 1 } // deterministic: always the last

	winner, err := svc.RandomWinner(context.Background())
	if err != nil {
		t.Fatalf("RandomWinner() error = %v", err)
	}
	if winner.Name != "carol" {
		t.Errorf("winner = %q, want %q", winner.Name, "carol")
	}
	if winner.BadgeCode != "badge-c" {
		t.Errorf("BadgeCode = %q, want %q", winner.BadgeCode, "badge-c")
	}
}

func TestRandomWinner_NobodyEligible(t *testing.T) {
	svc := newTestStatsService(&mockStatsRepo{})

	_, err := svc.RandomWinner(context.Background())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LEADERBOARD TESTS
// =========================================================================

func TestLeaderboard_AppliesSizeCap(t *testing.T) {
	board := make([]model.LeaderboardEntry, 0, LeaderboardSize+5)
	for i := 0; i < LeaderboardSize+5; i++ {
		board = append(board, model.LeaderboardEntry{UserID: int64(i + 1)})
	}
	svc := newTestStatsService(&mockStatsRepo{board: board})

	entries, err := svc.Leaderboard(context.Background())
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != LeaderboardSize {
		t.Errorf("len(entries) = %d, want %d", len(entries), LeaderboardSize)
	}
}
