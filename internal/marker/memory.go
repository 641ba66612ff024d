package marker

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process Store. Tests drive it with a controllable Clock.
type Memory struct {
	mu        sync.Mutex
	clock     Clock
	expiresAt *time.Time
}

// NewMemory returns an empty in-memory store. A nil clock uses SystemClock.
func NewMemory(clock Clock) *Memory {
	return &Memory{clock: clockOrSystem(clock)}
}

// IsSuppressed implements Store. Expired markers are evicted lazily.
func (m *Memory) IsSuppressed(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expiresAt == nil {
		return false
	}
	if !m.clock.Now().Before(*m.expiresAt) {
		m.expiresAt = nil
		return false
	}
	return true
}

// SetSuppressed implements Store.
func (m *Memory) SetSuppressed(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := ExpiryFrom(m.clock.Now())
	m.expiresAt = &t
}

// Clear removes the marker.
func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	m.expiresAt = nil
	m.mu.Unlock()
}

// ExpiresAt returns the stored expiry, or nil when no marker is set.
func (m *Memory) ExpiresAt(_ context.Context) *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.expiresAt == nil {
		return nil
	}
	t := *m.expiresAt
	return &t
}
