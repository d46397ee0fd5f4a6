package model

import "time"

// Scan is a timestamped record of a user participating in a named activity.
// Scans are immutable after creation — there is no update path anywhere in
// the API.
type Scan struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	ActivityName     string    `json:"activity_name"`
	ActivityCategory string    `json:"activity_category"`
	ScannedAt        time.Time `json:"scanned_at"`
}

// Reserved activity used by the one-per-user snack claim.
const (
	SnackActivityName     = "Midnight Snack"
	SnackActivityCategory = "Food"
)
