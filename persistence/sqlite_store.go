package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"frontier-realm/server/models"
)

// SQLiteStore records diagnostics in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			path_points INTEGER NOT NULL,
			branches INTEGER NOT NULL,
			branches_skipped INTEGER NOT NULL,
			side_areas INTEGER NOT NULL,
			structures INTEGER NOT NULL,
			generation_ms INTEGER NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			peak_live INTEGER NOT NULL DEFAULT 0,
			started_at INTEGER NOT NULL,
			ended_at INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS stats_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			frame INTEGER NOT NULL,
			created INTEGER NOT NULL,
			destroyed INTEGER NOT NULL,
			current_live INTEGER NOT NULL,
			peak_live INTEGER NOT NULL,
			visited INTEGER NOT NULL,
			structures_destroyed INTEGER NOT NULL,
			recorded_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS stats_samples_session_idx ON stats_samples (session_id, id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite init: %w", err)
		}
	}
	return nil
}

// RecordSession inserts or updates a session summary.
func (s *SQLiteStore) RecordSession(sum models.SessionSummary) error {
	var ended sql.NullInt64
	if !sum.EndedAt.IsZero() {
		ended = sql.NullInt64{Int64: sum.EndedAt.UnixMilli(), Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, width, height, path_points, branches, branches_skipped, side_areas, structures, generation_ms, frames, peak_live, started_at, ended_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET frames = excluded.frames, peak_live = excluded.peak_live, ended_at = excluded.ended_at`,
		sum.SessionID, sum.Width, sum.Height, sum.PathPoints, sum.Branches, sum.BranchesSkipped,
		sum.SideAreas, sum.Structures, sum.GenerationMillis, int64(sum.Frames), sum.PeakLive,
		sum.StartedAt.UnixMilli(), ended)
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// RecordStats appends a diagnostics sample.
func (s *SQLiteStore) RecordStats(sample models.StatsSample) error {
	_, err := s.db.Exec(`
		INSERT INTO stats_samples (session_id, frame, created, destroyed, current_live, peak_live, visited, structures_destroyed, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sample.SessionID, int64(sample.Frame), sample.Memory.Created, sample.Memory.Destroyed,
		sample.Memory.CurrentLive, sample.Memory.PeakLive, sample.Visited, sample.StructuresDestroyed,
		sample.RecordedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record stats: %w", err)
	}
	return nil
}

// RecentStats returns up to limit of the newest samples of a session,
// oldest first.
func (s *SQLiteStore) RecentStats(sessionID string, limit int) ([]models.StatsSample, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT session_id, frame, created, destroyed, current_live, peak_live, visited, structures_destroyed, recorded_at
		FROM (SELECT * FROM stats_samples WHERE session_id = ? ORDER BY id DESC LIMIT ?)
		ORDER BY id ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var out []models.StatsSample
	for rows.Next() {
		var sample models.StatsSample
		var frame, recorded int64
		if err := rows.Scan(&sample.SessionID, &frame, &sample.Memory.Created, &sample.Memory.Destroyed,
			&sample.Memory.CurrentLive, &sample.Memory.PeakLive, &sample.Visited, &sample.StructuresDestroyed, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sample.Frame = uint64(frame)
		sample.RecordedAt = time.UnixMilli(recorded).UTC()
		out = append(out, sample)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
