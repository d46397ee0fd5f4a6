// Package main loads participant fixtures from a JSON file into the
// database. Run it once before the event:
//
//	go run ./cmd/seed -file users.json
//
// The loader is a no-op when the database already has users, so it is safe
// to run on every deploy.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/xid"

	"github.com/sakif/hackathon-api/internal/auth"
	"github.com/sakif/hackathon-api/internal/model"
	sqliteRepo "github.com/sakif/hackathon-api/internal/repository/sqlite"
)

// seedUser mirrors the fixture file format. Scans carry their original
// timestamps so the analytics endpoints have realistic history to chew on.
type seedUser struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	BadgeCode string     `json:"badge_code"`
	IsAdmin   bool       `json:"is_admin"`
	Scans     []seedScan `json:"scans"`
}

type seedScan struct {
	ActivityName     string `json:"activity_name"`
	ActivityCategory string `json:"activity_category"`
	ScannedAt        string `json:"scanned_at"`
}

// defaultPassword is the placeholder credential for seeded accounts.
// Participants are expected to change it; it exists so the login flow
// works against fixture data.
const defaultPassword = "defaultpassword"

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	file := flag.String("file", "users.json", "path to the users fixture file")
	flag.Parse()

	dbPath := "data/hackathon.db"
	if envDB := os.Getenv("DB_PATH"); envDB != "" {
		dbPath = envDB
	}

	if err := run(*file, dbPath, logger); err != nil {
		logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(file, dbPath string, logger *slog.Logger) error {
	raw, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var records []seedUser
	if err := json.Unmarshal(raw, &records); err != nil {
		return err
	}
	if len(records) == 0 {
		logger.Warn("fixture file is empty, nothing to load", slog.String("file", file))
		return nil
	}

	db, err := sqliteRepo.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	existing, err := db.Users().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		logger.Info("database already has users, skipping seed",
			slog.Int("existing", len(existing)),
		)
		return nil
	}

	// Every seeded account shares the placeholder password, so one hash
	// serves all of them. Hashing per user would cost ~250ms each at the
	// production bcrypt cost.
	hash, err := auth.NewPasswordService().Hash(defaultPassword)
	if err != nil {
		return err
	}

	loaded, skipped := 0, 0
	for _, rec := range records {
		if rec.Name == "" || rec.Email == "" || rec.Phone == "" {
			logger.Warn("skipping record with missing fields", slog.String("email", rec.Email))
			skipped++
			continue
		}

		badge := strings.TrimSpace(rec.BadgeCode)
		if badge == "" {
			badge = xid.New().String()
		}

		now := time.Now().UTC()
		user := &model.User{
			Name:         rec.Name,
			Email:        rec.Email,
			Phone:        rec.Phone,
			BadgeCode:    badge,
			PasswordHash: hash,
			UpdatedAt:    &now,
			IsActive:     true,
		}
		if err := db.Users().Create(ctx, user); err != nil {
			logger.Warn("skipping record",
				slog.String("email", rec.Email),
				slog.String("error", err.Error()),
			)
			skipped++
			continue
		}

		// Create applies the first-admin rule; the fixture's is_admin flag
		// overrides it either way.
		if user.IsAdmin != rec.IsAdmin {
			user.IsAdmin = rec.IsAdmin
			if err := db.Users().Update(ctx, user); err != nil {
				return err
			}
		}

		for _, sc := range rec.Scans {
			scannedAt, err := parseScannedAt(sc.ScannedAt)
			if err != nil {
				logger.Warn("skipping scan with bad timestamp",
					slog.String("email", rec.Email),
					slog.String("scanned_at", sc.ScannedAt),
				)
				continue
			}
			scan := &model.Scan{
				UserID:           user.ID,
				ActivityName:     sc.ActivityName,
				ActivityCategory: sc.ActivityCategory,
				ScannedAt:        scannedAt,
			}
			if err := db.Scans().Create(ctx, scan); err != nil {
				return err
			}
		}
		loaded++
	}

	logger.Info("seed complete",
		slog.Int("loaded", loaded),
		slog.Int("skipped", skipped),
	)
	return nil
}

// parseScannedAt accepts both bare ISO timestamps ("2006-01-02T15:04:05")
// and full RFC 3339, which is what fixture generators tend to emit.
func parseScannedAt(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
