package interrupt

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dotcommander/interstitial/internal/marker"
)

// countingMarker wraps a marker store and records calls.
type countingMarker struct {
	mu         sync.Mutex
	inner      marker.Store
	sets       int
	checks     int
	suppressed bool
}

func newCountingMarker(suppressed bool) *countingMarker {
	return &countingMarker{inner: marker.NewMemory(nil), suppressed: suppressed}
}

func (m *countingMarker) IsSuppressed(ctx context.Context) bool {
	m.mu.Lock()
	m.checks++
	pre := m.suppressed
	m.mu.Unlock()
	return pre || m.inner.IsSuppressed(ctx)
}

func (m *countingMarker) SetSuppressed(ctx context.Context) {
	m.mu.Lock()
	m.sets++
	m.mu.Unlock()
	m.inner.SetSuppressed(ctx)
}

func (m *countingMarker) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

// contextBoundMarker drops writes whose context is already done, the way a
// database-backed store does.
type contextBoundMarker struct {
	*countingMarker
	dropped int
}

func (m *contextBoundMarker) SetSuppressed(ctx context.Context) {
	if ctx.Err() != nil {
		m.dropped++
		return
	}
	m.countingMarker.SetSuppressed(ctx)
}

// probe records which capabilities of a definition were invoked.
type probe struct {
	id          string
	required    bool
	requiredErr error
	presentErr  error
	ackErr      error
	result      Result
	noAck       bool

	queried   int
	presented int
	acked     int
	gotResult Result
}

func (p *probe) definition() Definition {
	d := Definition{
		ID: p.id,
		Required: func(ctx context.Context) (bool, error) {
			p.queried++
			return p.required, p.requiredErr
		},
		Present: func(ctx context.Context) (Result, error) {
			p.presented++
			return p.result, p.presentErr
		},
	}
	if !p.noAck {
		d.Acknowledge = func(ctx context.Context, r Result) error {
			p.acked++
			p.gotResult = r
			return p.ackErr
		}
	}
	return d
}

func definitions(probes ...*probe) []Definition {
	defs := make([]Definition, len(probes))
	for i, p := range probes {
		defs[i] = p.definition()
	}
	return defs
}

// recordingNotifier captures notices.
type recordingNotifier struct {
	notices []Notice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

func newTestOrchestrator(t *testing.T, m marker.Store) (*Orchestrator, *recordingNotifier) {
	t.Helper()
	n := &recordingNotifier{}
	policy := &FailurePolicy{Marker: m, Notifier: n, SupportContact: DefaultSupportContact}
	return NewOrchestrator(m, policy, nil), n
}

var errBoom = errors.New("boom")
