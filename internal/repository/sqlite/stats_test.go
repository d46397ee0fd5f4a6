package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/hackathon-api/internal/repository"
)

// seedStatsDB creates three users with a known scan distribution:
//
//	alice: 3× Workshop (10:05, 10:40, 11:10), 1× Lunch (12:00)
//	bob:   1× Workshop (10:20)
//	carol: no scans
func seedStatsDB(t *testing.T) (*DB, [3]int64) {
	t.Helper()
	db := newTestDB(t)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	createTestScan(t, db, alice.ID, "Workshop", "Learning", day.Add(10*time.Hour+5*time.Minute))
	createTestScan(t, db, alice.ID, "Workshop", "Learning", day.Add(10*time.Hour+40*time.Minute))
	createTestScan(t, db, alice.ID, "Workshop", "Learning", day.Add(11*time.Hour+10*time.Minute))
	createTestScan(t, db, alice.ID, "Lunch", "Food", day.Add(12*time.Hour))
	createTestScan(t, db, bob.ID, "Workshop", "Learning", day.Add(10*time.Hour+20*time.Minute))

	return db, [3]int64{alice.ID, bob.ID, carol.ID}
}

// =========================================================================
// SCAN STATS TESTS
// =========================================================================

func TestScanStats_GroupsAndCounts(t *testing.T) {
	db, _ := seedStatsDB(t)

	stats, err := db.Stats().ScanStats(context.Background(), repository.StatsFilter{})
	if err != nil {
		t.Fatalf("ScanStats() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	// Ordered by activity name: Lunch before Workshop
	if stats[0].ActivityName != "Lunch" || stats[0].Frequency != 1 {
		t.Errorf("stats[0] = %+v, want Lunch with frequency 1", stats[0])
	}
	if stats[1].ActivityName != "Workshop" || stats[1].Frequency != 4 {
		t.Errorf("stats[1] = %+v, want Workshop with frequency 4", stats[1])
	}
}

func TestScanStats_FrequencyBounds(t *testing.T) {
	db, _ := seedStatsDB(t)

	// min_frequency=2 keeps only Workshop (4 scans)
	stats, err := db.Stats().ScanStats(context.Background(), repository.StatsFilter{MinFrequency: 2})
	if err != nil {
		t.Fatalf("ScanStats(min=2) error = %v", err)
	}
	if len(stats) != 1 || stats[0].ActivityName != "Workshop" {
		t.Errorf("min_frequency filter: got %+v, want only Workshop", stats)
	}

	// max_frequency=1 keeps only Lunch
	one := 1
	stats, err = db.Stats().ScanStats(context.Background(), repository.StatsFilter{MaxFrequency: &one})
	if err != nil {
		t.Fatalf("ScanStats(max=1) error = %v", err)
	}
	if len(stats) != 1 || stats[0].ActivityName != "Lunch" {
		t.Errorf("max_frequency filter: got %+v, want only Lunch", stats)
	}
}

func TestScanStats_NameFilter(t *testing.T) {
	db, _ := seedStatsDB(t)

	stats, err := db.Stats().ScanStats(context.Background(), repository.StatsFilter{ActivityName: "Lunch"})
	if err != nil {
		t.Fatalf("ScanStats() error = %v", err)
	}
	if len(stats) != 1 || stats[0].ActivityCategory != "Food" {
		t.Errorf("name filter: got %+v, want the Lunch/Food group", stats)
	}
}

// =========================================================================
// TIMELINE / PEAK TIMES TESTS
// =========================================================================

func TestScanTimeline_HourBuckets(t *testing.T) {
	db, _ := seedStatsDB(t)

	buckets, err := db.Stats().ScanTimeline(context.Background(), "Workshop")
	if err != nil {
		t.Fatalf("ScanTimeline() error = %v", err)
	}
	// Workshop scans: 3 in the 10:00 hour, 1 in the 11:00 hour
	if len(buckets) != 2 {
		t.Fatalf("len(buckets) = %d, want 2", len(buckets))
	}

	want10 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	if !buckets[0].Hour.Equal(want10) {
		t.Errorf("buckets[0].Hour = %v, want %v", buckets[0].Hour, want10)
	}
	if buckets[0].Count != 3 {
		t.Errorf("buckets[0].Count = %d, want 3", buckets[0].Count)
	}
	if buckets[1].Count != 1 {
		t.Errorf("buckets[1].Count = %d, want 1", buckets[1].Count)
	}
}

func TestScanTimeline_UnknownActivityIsEmpty(t *testing.T) {
	db, _ := seedStatsDB(t)

	buckets, err := db.Stats().ScanTimeline(context.Background(), "Karaoke")
	if err != nil {
		t.Fatalf("ScanTimeline() error = %v", err)
	}
	if len(buckets) != 0 {
		t.Errorf("len(buckets) = %d, want 0", len(buckets))
	}
}

func TestPeakTimes_CountsAllActivities(t *testing.T) {
	db, _ := seedStatsDB(t)

	buckets, err := db.Stats().PeakTimes(context.Background())
	if err != nil {
		t.Fatalf("PeakTimes() error = %v", err)
	}
	// Hours with scans: 10:00 (3 scans), 11:00 (1), 12:00 (1)
	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3", len(buckets))
	}
	if buckets[0].Count != 3 {
		t.Errorf("buckets[0].Count = %d, want 3", buckets[0].Count)
	}
}

// =========================================================================
// LEADERBOARD / POPULARITY TESTS
// =========================================================================

func TestLeaderboard_OrderAndLimit(t *testing.T) {
	db, ids := seedStatsDB(t)

	entries, err := db.Stats().Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	// carol has no scans and must not appear
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].UserID != ids[0] || entries[0].Scans != 4 {
		t.Errorf("entries[0] = %+v, want alice with 4 scans", entries[0])
	}
	if entries[1].UserID != ids[1] || entries[1].Scans != 1 {
		t.Errorf("entries[1] = %+v, want bob with 1 scan", entries[1])
	}

	// Limit is respected
	entries, err = db.Stats().Leaderboard(context.Background(), 1)
	if err != nil {
		t.Fatalf("Leaderboard(1) error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("len(entries) = %d, want 1", len(entries))
	}
}

func TestLeaderboard_TiesBrokenByUserID(t *testing.T) {
	db := newTestDB(t)
	a := createTestUser(t, db, "tie-a")
	b := createTestUser(t, db, "tie-b")
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	createTestScan(t, db, a.ID, "Workshop", "Learning", at)
	createTestScan(t, db, b.ID, "Workshop", "Learning", at)

	entries, err := db.Stats().Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].UserID != a.ID {
		t.Errorf("tied entries should order by ascending user id, got %d first", entries[0].UserID)
	}
}

func TestPopularActivities(t *testing.T) {
	db, _ := seedStatsDB(t)

	activities, err := db.Stats().PopularActivities(context.Background())
	if err != nil {
		t.Fatalf("PopularActivities() error = %v", err)
	}
	if len(activities) != 2 {
		t.Fatalf("len(activities) = %d, want 2", len(activities))
	}
	if activities[0].ActivityName != "Workshop" || activities[0].Scans != 4 {
		t.Errorf("activities[0] = %+v, want Workshop with 4 scans", activities[0])
	}
}

// =========================================================================
// ELIGIBLE WINNERS TESTS
// =========================================================================

func TestEligibleWinners_Threshold(t *testing.T) {
	db, ids := seedStatsDB(t)

	// Only alice (4 scans) clears a threshold of 3
	winners, err := db.Stats().EligibleWinners(context.Background(), 3)
	if err != nil {
		t.Fatalf("EligibleWinners() error = %v", err)
	}
	if len(winners) != 1 {
		t.Fatalf("len(winners) = %d, want 1", len(winners))
	}
	if winners[0].UserID != ids[0] {
		t.Errorf("winner = %+v, want alice", winners[0])
	}
	if winners[0].BadgeCode == "" {
		t.Error("winner badge code should be populated")
	}

	// Threshold of 1 includes bob too, but never carol
	winners, err = db.Stats().EligibleWinners(context.Background(), 1)
	if err != nil {
		t.Fatalf("EligibleWinners() error = %v", err)
	}
	if len(winners) != 2 {
		t.Errorf("len(winners) = %d, want 2", len(winners))
	}
}

func TestEligibleWinners_NobodyQualifies(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "scanless")

	winners, err := db.Stats().EligibleWinners(context.Background(), 3)
	if err != nil {
		t.Fatalf("EligibleWinners() error = %v", err)
	}
	if len(winners) != 0 {
		t.Errorf("len(winners) = %d, want 0", len(winners))
	}
}
