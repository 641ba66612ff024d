package actions

import (
	"context"
	"database/sql"
	"time"

	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/store"
)

// StatusReport summarizes local state for one browser context.
type StatusReport struct {
	SchemaVersion int64                `json:"schema_version"`
	LatestSchema  int64                `json:"latest_schema"`
	Counts        *store.StatusCounts  `json:"counts"`
	Marker        *models.MarkerStatus `json:"marker"`
}

// Status collects schema, table counts and the marker for contextKey.
func Status(ctx context.Context, db *sql.DB, contextKey string, now time.Time) (*StatusReport, error) {
	current, latest, err := store.SchemaVersion(db)
	if err != nil {
		return nil, err
	}
	counts, err := store.GetStatusCounts(ctx, db, now)
	if err != nil {
		return nil, err
	}
	m, err := MarkerStatus(ctx, db, contextKey, now)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		SchemaVersion: current,
		LatestSchema:  latest,
		Counts:        counts,
		Marker:        m,
	}, nil
}
