package actions

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/dotcommander/interstitial/internal/store"
)

// setupTestDBWithCleanup creates a test DB with automatic cleanup.
// Cleanup is registered via t.Cleanup; the returned func is a no-op.
func setupTestDBWithCleanup(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	testDBPath := t.TempDir() + "/test.db"

	db, err := store.InitDBWithPath(testDBPath)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db, func() {}
}

// fakeTransport answers from a fixed table and records every call.
type fakeTransport struct {
	mu        sync.Mutex
	required  map[string]bool
	queryErr  map[string]error
	updateErr error
	onUpdate  func()
	queries   []string
	updates   []string
}

func (f *fakeTransport) IsInterruptRequired(_ context.Context, t string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, t)
	if err := f.queryErr[t]; err != nil {
		return false, err
	}
	return f.required[t], nil
}

func (f *fakeTransport) UpdateAgreementStatus(_ context.Context, t, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, t+"="+status)
	if f.onUpdate != nil {
		f.onUpdate()
	}
	return f.updateErr
}
