package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatusCounts holds summary counts for the tables this tool owns.
type StatusCounts struct {
	MarkersActive  int `json:"markers_active"`
	MarkersExpired int `json:"markers_expired"`
	Agreements     int `json:"agreements"`
}

// GetStatusCounts retrieves all status counts in a single query.
func GetStatusCounts(ctx context.Context, db *sql.DB, now time.Time) (*StatusCounts, error) {
	counts := &StatusCounts{}
	nowMS := toMillis(now)
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM suppression_markers WHERE expires_at > ?),
			(SELECT COUNT(*) FROM suppression_markers WHERE expires_at <= ?),
			(SELECT COUNT(*) FROM agreements)
	`, nowMS, nowMS).Scan(&counts.MarkersActive, &counts.MarkersExpired, &counts.Agreements)
	if err != nil {
		return nil, fmt.Errorf("failed to get status counts: %w", err)
	}
	return counts, nil
}
