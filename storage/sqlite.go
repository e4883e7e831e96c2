package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"weather-app/models"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements LocationStore as a one-table key-value store (pure Go driver modernc.org/sqlite)
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLite opens (or creates) the database at path and applies the schema.
// A nil logger uses slog.Default().
func NewSQLite(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage", "driver", "sqlite")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	// WAL keeps the occasional write from blocking a concurrent read
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		logger.Warn("could not set WAL mode", "path", path, "error", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS kv (
        key TEXT PRIMARY KEY,
        value TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	logger.Debug("opened location store", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// SaveLocation replaces the stored location
func (s *SQLiteStore) SaveLocation(ctx context.Context, loc models.Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO kv(key, value, updated_at) VALUES(?,?,?)`,
		LocationKey, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save location: %w", err)
	}
	s.logger.Debug("saved location", "location", loc.Query())
	return nil
}

// LoadLocation returns the stored location, found == false when nothing was saved yet
func (s *SQLiteStore) LoadLocation(ctx context.Context) (models.Location, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, LocationKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Location{}, false, nil
	}
	if err != nil {
		return models.Location{}, false, fmt.Errorf("load location: %w", err)
	}

	var loc models.Location
	if err := json.Unmarshal([]byte(value), &loc); err != nil {
		return models.Location{}, false, fmt.Errorf("decode location: %w", err)
	}
	return loc, true, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ LocationStore = (*SQLiteStore)(nil)
