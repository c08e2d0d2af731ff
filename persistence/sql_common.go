package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"frontier-realm/server/models"
)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func scanSamples(rows *sql.Rows) ([]models.StatsSample, error) {
	var out []models.StatsSample
	for rows.Next() {
		var s models.StatsSample
		var frame int64
		if err := rows.Scan(&s.SessionID, &frame, &s.Memory.Created, &s.Memory.Destroyed,
			&s.Memory.CurrentLive, &s.Memory.PeakLive, &s.Visited, &s.StructuresDestroyed, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		s.Frame = uint64(frame)
		out = append(out, s)
	}
	return out, rows.Err()
}
