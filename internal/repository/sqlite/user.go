package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/sakif/hackathon-api/internal/apperror"
	"github.com/sakif/hackathon-api/internal/model"
	"github.com/sakif/hackathon-api/internal/repository"
)

// UserStore implements repository.UserRepository on top of the shared pool.
type UserStore struct {
	db *DB
}

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

const userColumns = `id, name, email, phone, badge_code, password_hash, updated_at, is_active, is_admin`

// Create inserts a new user and assigns its ID.
//
// The admin bootstrap lives here because it must be transactional: the count
// of existing users and the insert share one tx, so two concurrent
// registrations can't both observe an empty table. The first user ever
// inserted becomes admin; everyone after does not.
//
// A duplicate email or badge code trips the UNIQUE constraints and is
// translated to a conflict error; the transaction rolls back.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: counting users: %w", err)
	}
	user.IsAdmin = count == 0

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (name, email, phone, badge_code, password_hash, updated_at, is_active, is_admin)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Name,
		user.Email,
		user.Phone,
		user.BadgeCode,
		user.PasswordHash,
		user.UpdatedAt,
		user.IsActive,
		user.IsAdmin,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user with this email or badge code already exists")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading inserted user id: %w", err)
	}
	user.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user insert: %w", err)
	}
	return nil
}

// scanUser reads one user row. The caller's SELECT must use userColumns.
// The interface accepts both *sql.Row and *sql.Rows.
func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.BadgeCode,
		&u.PasswordHash,
		&u.UpdatedAt,
		&u.IsActive,
		&u.IsAdmin,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user with their scans attached.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", strconv.FormatInt(id, 10))
		}
		return nil, fmt.Errorf("sqlite: getting user %d: %w", id, err)
	}

	scans, err := s.db.Scans().ListByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Scans = scans
	return u, nil
}

// GetByEmail retrieves a user by their login email, without scans.
// Used by authentication and the bearer-token guards.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email %s: %w", email, err)
	}
	return u, nil
}

// GetByBadge retrieves a user by badge code, without scans.
// Used by the physical check-in/check-out flow.
func (s *UserStore) GetByBadge(ctx context.Context, badgeCode string) (*model.User, error) {
	row := s.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE badge_code = ?`, badgeCode)

	u, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", badgeCode)
		}
		return nil, fmt.Errorf("sqlite: getting user by badge %s: %w", badgeCode, err)
	}
	return u, nil
}

// List returns all users with their scans attached.
//
// TWO-STEP FETCH:
// One query for the users, one for all scans, then group scans by user in
// memory. This avoids both N+1 queries and any ORM-style lazy loading — the
// caller always gets fully-populated records.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		u.Scans = []model.Scan{}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return s.attachScans(ctx, users)
}

// attachScans groups every scan row onto its owning user.
func (s *UserStore) attachScans(ctx context.Context, users []model.User) ([]model.User, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT id, user_id, activity_name, activity_category, scanned_at
		 FROM scans ORDER BY user_id, scanned_at`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing scans for users: %w", err)
	}
	defer rows.Close()

	byUser := make(map[int64][]model.Scan)
	for rows.Next() {
		var sc model.Scan
		if err := rows.Scan(&sc.ID, &sc.UserID, &sc.ActivityName, &sc.ActivityCategory, &sc.ScannedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning scan row: %w", err)
		}
		byUser[sc.UserID] = append(byUser[sc.UserID], sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating scans: %w", err)
	}

	for i := range users {
		if scans, ok := byUser[users[i].ID]; ok {
			users[i].Scans = scans
		}
	}
	return users, nil
}

// Update persists the mutable user fields: name, phone, is_admin and the
// nullable updated_at check-in marker. A nil UpdatedAt writes NULL, which is
// exactly what check-out needs.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	res, err := s.db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, phone = ?, updated_at = ?, is_admin = ? WHERE id = ?`,
		user.Name,
		user.Phone,
		user.UpdatedAt,
		user.IsAdmin,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %d: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(user.ID, 10))
	}
	return nil
}

// Delete removes the user and all of their scans in one transaction.
// The schema also declares ON DELETE CASCADE, but the explicit delete keeps
// the cascade visible and atomic regardless of pragma state.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scans WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: deleting scans for user %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: reading rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", strconv.FormatInt(id, 10))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing user delete: %w", err)
	}
	return nil
}
