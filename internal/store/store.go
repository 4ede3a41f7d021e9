// Package store persists reconstructed shot models in a local SQLite
// database, keyed by timeline name. Saved models are what compare runs
// diff against when the old edit's timeline is no longer in the project.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ming-qiu/theia/internal/errors"
	"github.com/ming-qiu/theia/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS models (
    timeline   TEXT PRIMARY KEY,
    sequence   TEXT NOT NULL,
    fps        REAL NOT NULL,
    shot_count INTEGER NOT NULL,
    payload    TEXT NOT NULL,
    saved_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_models_sequence ON models(sequence);
`

// Store wraps a single-connection SQLite database.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database at path and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewStoreError("creating database directory", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewStoreError("opening database", err)
	}

	// modernc sqlite serializes through a single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.Ping(); err != nil {
		return nil, errors.NewStoreError("pinging database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			return nil, errors.NewStoreError(fmt.Sprintf("executing %s", pragma), err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		return nil, errors.NewStoreError("applying schema", err)
	}

	return &Store{conn: conn, logger: logger}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Save upserts a model under its timeline name.
func (s *Store) Save(ctx context.Context, m *model.ShotModel) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return errors.NewStoreError("encoding model", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO models (timeline, sequence, fps, shot_count, payload, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(timeline) DO UPDATE SET
			sequence   = excluded.sequence,
			fps        = excluded.fps,
			shot_count = excluded.shot_count,
			payload    = excluded.payload,
			saved_at   = excluded.saved_at`,
		m.Timeline, m.Sequence, m.FPS, len(m.Shots), string(payload),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.NewStoreError("saving model", err)
	}

	if s.logger != nil {
		s.logger.Info("saved model", "timeline", m.Timeline, "shots", len(m.Shots))
	}
	return nil
}

// Load returns the model saved under a timeline name.
func (s *Store) Load(ctx context.Context, timeline string) (*model.ShotModel, error) {
	var payload string
	err := s.conn.QueryRowContext(ctx,
		"SELECT payload FROM models WHERE timeline = ?", timeline).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NewModelNotFoundError(timeline)
	}
	if err != nil {
		return nil, errors.NewStoreError("loading model", err)
	}

	var m model.ShotModel
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		return nil, errors.NewStoreError("decoding model", err)
	}
	return &m, nil
}

// Entry is one saved model's header row.
type Entry struct {
	Timeline  string    `json:"timeline"`
	Sequence  string    `json:"sequence"`
	FPS       float64   `json:"fps"`
	ShotCount int       `json:"shot_count"`
	SavedAt   time.Time `json:"saved_at"`
}

// List returns headers for every saved model, newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT timeline, sequence, fps, shot_count, saved_at
		FROM models ORDER BY saved_at DESC, timeline`)
	if err != nil {
		return nil, errors.NewStoreError("listing models", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var savedAt string
		if err := rows.Scan(&e.Timeline, &e.Sequence, &e.FPS, &e.ShotCount, &savedAt); err != nil {
			return nil, errors.NewStoreError("scanning model row", err)
		}
		if t, err := time.Parse(time.RFC3339, savedAt); err == nil {
			e.SavedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("iterating model rows", err)
	}
	return entries, nil
}

// Delete removes a saved model.
func (s *Store) Delete(ctx context.Context, timeline string) error {
	res, err := s.conn.ExecContext(ctx, "DELETE FROM models WHERE timeline = ?", timeline)
	if err != nil {
		return errors.NewStoreError("deleting model", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewModelNotFoundError(timeline)
	}
	return nil
}
