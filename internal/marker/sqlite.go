package marker

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dotcommander/interstitial/internal/store"
)

// SQLite persists the marker for one browser context in the local database.
type SQLite struct {
	db         *sql.DB
	contextKey string
	clock      Clock
	logger     *slog.Logger
}

// NewSQLite returns a Store scoped to contextKey. Nil clock and logger use defaults.
func NewSQLite(db *sql.DB, contextKey string, clock Clock, logger *slog.Logger) *SQLite {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{
		db:         db,
		contextKey: contextKey,
		clock:      clockOrSystem(clock),
		logger:     logger,
	}
}

// IsSuppressed implements Store. Storage errors fail open.
func (s *SQLite) IsSuppressed(ctx context.Context) bool {
	m, err := store.GetMarker(ctx, s.db, s.contextKey)
	if err != nil {
		s.logger.Warn("marker read failed, treating as not suppressed",
			"context_key", s.contextKey, "error", err.Error())
		return false
	}
	if m == nil {
		return false
	}
	return m.Active(s.clock.Now())
}

// SetSuppressed implements Store. Storage errors are logged and dropped.
func (s *SQLite) SetSuppressed(ctx context.Context) {
	now := s.clock.Now()
	if err := store.PutMarker(ctx, s.db, s.contextKey, ExpiryFrom(now), now); err != nil {
		s.logger.Error("marker write failed",
			"context_key", s.contextKey, "error", err.Error())
	}
}

// Clear deletes the marker. Reports whether one existed.
func (s *SQLite) Clear(ctx context.Context) (bool, error) {
	return store.DeleteMarker(ctx, s.db, s.contextKey)
}

// ExpiresAt returns the stored expiry (expired or not), or nil when none is stored.
func (s *SQLite) ExpiresAt(ctx context.Context) (*time.Time, error) {
	m, err := store.GetMarker(ctx, s.db, s.contextKey)
	if err != nil || m == nil {
		return nil, err
	}
	t := m.ExpiresAt
	return &t, nil
}
