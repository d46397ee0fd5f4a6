package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// Aggregate row types returned by the analytics queries. These are read
// models — they never map to a table of their own.

// ScanStat is one (activity, category) group with its scan frequency.
type ScanStat struct {
	ActivityName     string `json:"activity_name"`
	ActivityCategory string `json:"activity_category"`
	Frequency        int    `json:"frequency"`
}

// HourBucket is a count of scans within one clock hour. Used by both the
// per-activity timeline and the all-time peak-times report.
type HourBucket struct {
	Hour  time.Time
	Count int
}

// TimelineEntry is an hour bucket shaped for the /scan-timeline response.
type TimelineEntry struct {
	TimeSlot  string `json:"time_slot"`
	ScanCount int    `json:"scan_count"`
}

// LeaderboardEntry is one row of the top-N most active participants.
type LeaderboardEntry struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Scans  int    `json:"scans"`
}

// PopularActivity is one activity ranked by total scan count.
type PopularActivity struct {
	ActivityName string `json:"activity_name"`
	Scans        int    `json:"scans"`
}

// PeakTime is one hour bucket of the all-time peak report, keyed by its
// formatted hour-range label.
type PeakTime struct {
	Label string
	Count int
}

// PeakTimes serializes as one JSON object whose keys appear in bucket
// order, i.e. ascending in time. A plain map can't express that —
// encoding/json sorts map keys lexically, which would put "02 PM" buckets
// before "09 AM" ones.
type PeakTimes []PeakTime

// MarshalJSON renders the buckets as an ordered JSON object.
func (p PeakTimes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pt := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		label, err := json.Marshal(pt.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(label)
		buf.WriteByte(':')
		count, err := json.Marshal(pt.Count)
		if err != nil {
			return nil, err
		}
		buf.Write(count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ActivityLogEntry is one chronological entry of a user's scan history.
type ActivityLogEntry struct {
	Activity string `json:"activity"`
	Time     string `json:"time"`
}

// Winner identifies a raffle-eligible user (3+ scans).
type Winner struct {
	UserID    int64  `json:"-"`
	Name      string `json:"winner"`
	BadgeCode string `json:"badge_code"`
}
