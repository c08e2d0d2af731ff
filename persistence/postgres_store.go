package persistence

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"frontier-realm/server/logger"
	"frontier-realm/server/models"
)

// PostgresStore records diagnostics in PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and prepares the diagnostics schema
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema initializes the database schema
func (dm *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		path_points INTEGER NOT NULL,
		branches INTEGER NOT NULL,
		branches_skipped INTEGER NOT NULL,
		side_areas INTEGER NOT NULL,
		structures INTEGER NOT NULL,
		generation_ms BIGINT NOT NULL,
		frames BIGINT NOT NULL DEFAULT 0,
		peak_live INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL,
		ended_at TIMESTAMP WITH TIME ZONE
	);

	CREATE TABLE IF NOT EXISTS stats_samples (
		id BIGSERIAL PRIMARY KEY,
		session_id TEXT NOT NULL,
		frame BIGINT NOT NULL,
		created INTEGER NOT NULL,
		destroyed INTEGER NOT NULL,
		current_live INTEGER NOT NULL,
		peak_live INTEGER NOT NULL,
		visited INTEGER NOT NULL,
		structures_destroyed INTEGER NOT NULL,
		recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS stats_samples_session_idx ON stats_samples (session_id, id);
	`

	_, err := dm.db.Exec(schema)
	return err
}

// RecordSession inserts or updates a session summary
func (dm *PostgresStore) RecordSession(s models.SessionSummary) error {
	query := `
	INSERT INTO sessions (id, width, height, path_points, branches, branches_skipped, side_areas, structures, generation_ms, frames, peak_live, started_at, ended_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id)
	DO UPDATE SET
		frames = $10, peak_live = $11, ended_at = $13
	`

	_, err := dm.db.Exec(query,
		s.SessionID, s.Width, s.Height, s.PathPoints, s.Branches, s.BranchesSkipped,
		s.SideAreas, s.Structures, s.GenerationMillis, int64(s.Frames), s.PeakLive,
		s.StartedAt, nullTime(s.EndedAt))
	if err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// RecordStats appends a diagnostics sample
func (dm *PostgresStore) RecordStats(s models.StatsSample) error {
	query := `
	INSERT INTO stats_samples (session_id, frame, created, destroyed, current_live, peak_live, visited, structures_destroyed, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := dm.db.Exec(query,
		s.SessionID, int64(s.Frame), s.Memory.Created, s.Memory.Destroyed,
		s.Memory.CurrentLive, s.Memory.PeakLive, s.Visited, s.StructuresDestroyed, s.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to record stats: %w", err)
	}
	return nil
}

// RecentStats returns up to limit of the newest samples of a session,
// oldest first
func (dm *PostgresStore) RecentStats(sessionID string, limit int) ([]models.StatsSample, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
	SELECT session_id, frame, created, destroyed, current_live, peak_live, visited, structures_destroyed, recorded_at
	FROM (
		SELECT * FROM stats_samples WHERE session_id = $1 ORDER BY id DESC LIMIT $2
	) recent ORDER BY id ASC
	`

	rows, err := dm.db.Query(query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()
	return scanSamples(rows)
}

// Close closes the database connection
func (dm *PostgresStore) Close() error {
	logger.Log.Info("Closing database connection...")
	return dm.db.Close()
}
