package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dotcommander/interstitial/internal/models"
)

// GetMarker loads the suppression marker for a browser context.
// Returns (nil, nil) when no marker has been written. Expired markers are
// returned as-is; callers decide with Marker.Active.
func GetMarker(ctx context.Context, db *sql.DB, contextKey string) (*models.Marker, error) {
	if err := validateKey("context key", contextKey); err != nil {
		return nil, err
	}

	var expiresAt, updatedAt int64
	err := db.QueryRowContext(ctx, `
		SELECT expires_at, updated_at
		FROM suppression_markers
		WHERE context_key = ?
	`, contextKey).Scan(&expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load marker: %w", err)
	}

	return &models.Marker{
		ContextKey: contextKey,
		ExpiresAt:  fromMillis(expiresAt),
		UpdatedAt:  fromMillis(updatedAt),
	}, nil
}

// PutMarker writes (or replaces) the marker for a browser context. The most
// recent write always governs expiry, even if it shortens it.
func PutMarker(ctx context.Context, db *sql.DB, contextKey string, expiresAt, now time.Time) error {
	if err := validateKey("context key", contextKey); err != nil {
		return err
	}

	return RetryWithBackoff(func() error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO suppression_markers (context_key, expires_at, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(context_key) DO UPDATE SET
				expires_at = excluded.expires_at,
				updated_at = excluded.updated_at
		`, contextKey, toMillis(expiresAt), toMillis(now))
		if err != nil {
			return fmt.Errorf("failed to write marker: %w", err)
		}
		return nil
	})
}

// DeleteMarker removes the marker for a browser context. Reports whether a row existed.
func DeleteMarker(ctx context.Context, db *sql.DB, contextKey string) (bool, error) {
	if err := validateKey("context key", contextKey); err != nil {
		return false, err
	}

	var affected int64
	err := RetryWithBackoff(func() error {
		res, err := db.ExecContext(ctx, `DELETE FROM suppression_markers WHERE context_key = ?`, contextKey)
		if err != nil {
			return fmt.Errorf("failed to delete marker: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// PruneExpiredMarkers deletes markers whose expiry is at or before now.
func PruneExpiredMarkers(ctx context.Context, db *sql.DB, now time.Time) (int64, error) {
	var affected int64
	err := RetryWithBackoff(func() error {
		res, err := db.ExecContext(ctx, `DELETE FROM suppression_markers WHERE expires_at <= ?`, toMillis(now))
		if err != nil {
			return fmt.Errorf("failed to prune markers: %w", err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// ListMarkers returns every stored marker ordered by context key.
func ListMarkers(ctx context.Context, db *sql.DB) ([]models.Marker, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT context_key, expires_at, updated_at
		FROM suppression_markers
		ORDER BY context_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list markers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.Marker
	for rows.Next() {
		var m models.Marker
		var expiresAt, updatedAt int64
		if err := rows.Scan(&m.ContextKey, &expiresAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan marker: %w", err)
		}
		m.ExpiresAt = fromMillis(expiresAt)
		m.UpdatedAt = fromMillis(updatedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
