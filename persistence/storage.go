package persistence

import (
	"fmt"

	"frontier-realm/server/models"
)

// Storage is the diagnostics sink. It records session summaries and
// periodic cache samples; world state itself is never stored.
type Storage interface {
	RecordSession(summary models.SessionSummary) error
	RecordStats(sample models.StatsSample) error
	RecentStats(sessionID string, limit int) ([]models.StatsSample, error)
	Close() error
}

// Discard is a Storage that drops everything.
type Discard struct{}

func (Discard) RecordSession(models.SessionSummary) error { return nil }

func (Discard) RecordStats(models.StatsSample) error { return nil }

func (Discard) RecentStats(string, int) ([]models.StatsSample, error) { return nil, nil }

func (Discard) Close() error { return nil }

// Open returns the backend selected by kind: "json" (default), "sqlite",
// "postgres" or "none".
func Open(kind, file, dsn string) (Storage, error) {
	switch kind {
	case "", "json":
		if file == "" {
			file = "diagnostics.json"
		}
		return NewJSONStore(file)
	case "sqlite":
		if file == "" {
			file = "diagnostics.db"
		}
		return NewSQLiteStore(file)
	case "postgres":
		return NewPostgresStore(dsn)
	case "none":
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown persistence type %q", kind)
}
