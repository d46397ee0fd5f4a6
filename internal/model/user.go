// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered hackathon participant.
//
// WHY UpdatedAt *time.Time (a pointer)?
// The timestamp doubles as the check-in marker: non-nil means the badge is
// currently checked in, nil means checked out. A plain time.Time can't express
// "absent" (its zero value still marshals as a date), so we use a pointer and
// let the database store NULL.
//
// PasswordHash carries the bcrypt hash, never the plaintext. The `json:"-"`
// tag keeps it out of every API response.
type User struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"` // unique login identifier
	Phone        string     `json:"phone"`
	BadgeCode    string     `json:"badge_code"` // unique physical badge identifier
	PasswordHash string     `json:"-"`
	UpdatedAt    *time.Time `json:"updated_at"` // non-nil = currently checked in
	IsActive     bool       `json:"is_active"`
	IsAdmin      bool       `json:"is_admin"`

	// Scans is populated on list/detail reads with an explicit second query.
	// The repository never lazy-loads.
	Scans []Scan `json:"scans"`
}
