package store

import (
	"context"
	"testing"
	"time"

	"github.com/dotcommander/interstitial/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatusCounts_Empty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	counts, err := GetStatusCounts(context.Background(), db, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCounts{}, *counts)
}

func TestGetStatusCounts_SplitsActiveAndExpired(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	require.NoError(t, PutMarker(ctx, db, "a", now.Add(time.Hour), now))
	require.NoError(t, PutMarker(ctx, db, "b", now.Add(-time.Hour), now.Add(-25*time.Hour)))
	require.NoError(t, PutMarker(ctx, db, "c", now, now.Add(-24*time.Hour)))
	_, err := RecordAgreement(ctx, db, "sra", "a", models.AgreementAgree, now)
	require.NoError(t, err)

	counts, err := GetStatusCounts(ctx, db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, counts.MarkersActive)
	assert.Equal(t, 2, counts.MarkersExpired)
	assert.Equal(t, 1, counts.Agreements)
}
