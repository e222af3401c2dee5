package prefstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/charleschow/nhl-companion/internal/telemetry"

	_ "modernc.org/sqlite"
)

const (
	keyTimezone     = "timezone"
	DefaultTimezone = "America/New_York"
)

var ErrInvalidTimezone = errors.New("invalid IANA timezone")

// Store persists user preferences in a single-connection SQLite database.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS preferences (
			key     TEXT PRIMARY KEY,
			value   TEXT NOT NULL,
			updated TEXT NOT NULL
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init schema (%s): %w", stmt, err)
		}
	}

	telemetry.Infof("prefstore: opened %s", path)
	return &Store{db: db}, nil
}

// Timezone returns the saved zone, or DefaultTimezone when none is saved.
func (s *Store) Timezone(ctx context.Context) (tz string, saved bool, err error) {
	err = s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, keyTimezone).Scan(&tz)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return DefaultTimezone, false, nil
	case err != nil:
		return "", false, fmt.Errorf("read timezone: %w", err)
	}
	return tz, true, nil
}

func (s *Store) SetTimezone(ctx context.Context, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil || tz == "" || tz == "Local" {
		return fmt.Errorf("%w: %q", ErrInvalidTimezone, tz)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value, updated) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated = excluded.updated`,
		keyTimezone, tz, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save timezone: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
