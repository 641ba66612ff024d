package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockFile acquires an exclusive advisory lock on a .migrate.lock file
// adjacent to the database. Blocks until the lock is available.
func lockFile(dbPath string) (*flock.Flock, error) {
	lockPath := dbPath + ".migrate.lock"
	if dir := filepath.Dir(lockPath); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	return lock, nil
}

// unlockFile releases the advisory lock. Nil-safe.
func unlockFile(lock *flock.Flock) {
	if lock == nil {
		return
	}
	_ = lock.Unlock()
}
