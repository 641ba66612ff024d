package interrupt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailurePolicy_SetsMarkerAndNotifies(t *testing.T) {
	m := newCountingMarker(false)
	n := &recordingNotifier{}
	p := &FailurePolicy{Marker: m, Notifier: n, SupportContact: "help@example.org"}

	p.OnFailure(context.Background(), &StageError{Stage: StageQuery, DefinitionID: "sra", Err: errBoom}, "sra")

	assert.Equal(t, 1, m.setCount())
	require.Len(t, n.notices, 1)
	assert.Equal(t, "sra", n.notices[0].DefinitionID)
	assert.Contains(t, n.notices[0].Message, "help@example.org")
	assert.Contains(t, n.notices[0].Message, "different browser")
}

func TestFailurePolicy_MarkerSetBeforeNotice(t *testing.T) {
	m := newCountingMarker(false)
	suppressedAtNotice := false
	calls := 0
	n := NotifierFunc(func(ctx context.Context, _ Notice) error {
		calls++
		suppressedAtNotice = m.IsSuppressed(ctx)
		return nil
	})
	p := &FailurePolicy{Marker: m, Notifier: n}

	p.OnFailure(context.Background(), &StageError{Stage: StagePresent, DefinitionID: "piu", Err: errBoom}, "piu")

	require.Equal(t, 1, calls)
	assert.True(t, suppressedAtNotice, "marker must be set before the notice is surfaced")
}

func TestFailurePolicy_NotifierErrorIsSwallowed(t *testing.T) {
	m := newCountingMarker(false)
	n := &recordingNotifier{err: errBoom}
	p := &FailurePolicy{Marker: m, Notifier: n}

	assert.NotPanics(t, func() { p.OnFailure(context.Background(), errBoom, "") })
	assert.Equal(t, 1, m.setCount())
	assert.Equal(t, "INTERRUPT_FAILURE", n.notices[0].Code)
}

func TestFailurePolicy_CancelledContextStillSuppresses(t *testing.T) {
	m := newCountingMarker(false)
	p := &FailurePolicy{Marker: m}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.OnFailure(ctx, errBoom, "sra")
	assert.True(t, m.IsSuppressed(context.Background()))
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	err := WriterNotifier{W: &buf}.Notify(context.Background(), Notice{Message: FailureMessage("")})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), DefaultSupportContact)
	assert.Contains(t, buf.String(), "won't interrupt you again today")
}
