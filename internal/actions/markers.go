package actions

import (
	"context"
	"database/sql"
	"time"

	"github.com/dotcommander/interstitial/internal/marker"
	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/store"
)

// MarkerStatus reports whether contextKey is suppressed at now.
func MarkerStatus(ctx context.Context, db *sql.DB, contextKey string, now time.Time) (*models.MarkerStatus, error) {
	m, err := store.GetMarker(ctx, db, contextKey)
	if err != nil {
		return nil, err
	}
	status := &models.MarkerStatus{ContextKey: contextKey}
	if m == nil {
		return status, nil
	}
	exp := m.ExpiresAt
	status.ExpiresAt = &exp
	if m.Active(now) {
		status.Suppressed = true
		status.Remaining = m.ExpiresAt.Sub(now).Round(time.Second).String()
	}
	return status, nil
}

// SetMarker suppresses contextKey for one TTL from now.
func SetMarker(ctx context.Context, db *sql.DB, contextKey string, now time.Time) (*models.MarkerStatus, error) {
	if err := store.PutMarker(ctx, db, contextKey, marker.ExpiryFrom(now), now); err != nil {
		return nil, err
	}
	return MarkerStatus(ctx, db, contextKey, now)
}

// ClearMarkerResult reports a clear operation.
type ClearMarkerResult struct {
	ContextKey string `json:"context_key"`
	Removed    bool   `json:"removed"`
}

// ClearMarker removes the marker for contextKey.
func ClearMarker(ctx context.Context, db *sql.DB, contextKey string) (*ClearMarkerResult, error) {
	removed, err := store.DeleteMarker(ctx, db, contextKey)
	if err != nil {
		return nil, err
	}
	return &ClearMarkerResult{ContextKey: contextKey, Removed: removed}, nil
}

// PruneMarkersResult reports a gc operation.
type PruneMarkersResult struct {
	Deleted int64 `json:"deleted"`
}

// PruneMarkers deletes expired markers for every context.
func PruneMarkers(ctx context.Context, db *sql.DB, now time.Time) (*PruneMarkersResult, error) {
	n, err := store.PruneExpiredMarkers(ctx, db, now)
	if err != nil {
		return nil, err
	}
	return &PruneMarkersResult{Deleted: n}, nil
}

// ListMarkerStatuses returns the status of every stored marker.
func ListMarkerStatuses(ctx context.Context, db *sql.DB, now time.Time) ([]*models.MarkerStatus, error) {
	markers, err := store.ListMarkers(ctx, db)
	if err != nil {
		return nil, err
	}
	out := make([]*models.MarkerStatus, 0, len(markers))
	for _, m := range markers {
		exp := m.ExpiresAt
		st := &models.MarkerStatus{ContextKey: m.ContextKey, ExpiresAt: &exp}
		if m.Active(now) {
			st.Suppressed = true
			st.Remaining = m.ExpiresAt.Sub(now).Round(time.Second).String()
		}
		out = append(out, st)
	}
	return out, nil
}
