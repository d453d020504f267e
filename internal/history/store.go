// Package history records committed listens in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tessro/tonearm/internal/core"
	toneerrors "github.com/tessro/tonearm/internal/errors"
)

// Store is a play history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the history database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", toneerrors.ErrHistoryUnavailable, err)
	}
	// A single connection keeps :memory: databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, path: path}, nil
}

func migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS plays (
			id           TEXT PRIMARY KEY,
			track_id     INTEGER NOT NULL,
			uri          TEXT NOT NULL,
			title        TEXT DEFAULT '',
			artist       TEXT DEFAULT '',
			album        TEXT DEFAULT '',
			genre        TEXT DEFAULT '',
			duration     REAL DEFAULT 0,
			track_number INTEGER DEFAULT 0,
			disc_number  INTEGER DEFAULT 0,
			played_at    INTEGER NOT NULL
		);
	`); err != nil {
		return fmt.Errorf("create plays table: %w", err)
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS plays_played_at ON plays (played_at DESC)`); err != nil {
		return fmt.Errorf("create plays index: %w", err)
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// RecordPlay stores one committed listen.
func (s *Store) RecordPlay(track *core.Track, at time.Time) error {
	if track == nil {
		return toneerrors.ErrNoCurrentTrack
	}

	_, err := s.db.Exec(`
		INSERT INTO plays (id, track_id, uri, title, artist, album, genre, duration, track_number, disc_number, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		track.ID, track.URI, track.Title, track.Artist, track.Album, track.Genre,
		track.Duration, track.TrackNumber, track.DiscNumber,
		at.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return nil
}

// Recent returns up to limit listens, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]core.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, track_id, uri, title, artist, album, genre, duration, track_number, disc_number, played_at
		FROM plays
		ORDER BY played_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query plays: %w", err)
	}
	defer rows.Close()

	var entries []core.HistoryEntry
	for rows.Next() {
		var (
			entry    core.HistoryEntry
			track    core.Track
			playedAt int64
		)
		if err := rows.Scan(
			&entry.ID, &track.ID, &track.URI, &track.Title, &track.Artist, &track.Album, &track.Genre,
			&track.Duration, &track.TrackNumber, &track.DiscNumber, &playedAt,
		); err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		entry.Track = &track
		entry.PlayedAt = time.UnixMilli(playedAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded listens.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count plays: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
