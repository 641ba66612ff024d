package interrupt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/interstitial/internal/marker"
)

func TestRun_SuppressedTouchesNothing(t *testing.T) {
	m := newCountingMarker(true)
	o, n := newTestOrchestrator(t, m)
	a := &probe{id: "a", required: true}
	b := &probe{id: "b", required: true}

	out := o.Run(context.Background(), definitions(a, b))

	assert.Equal(t, Suppressed, out.Kind)
	assert.Zero(t, a.queried+a.presented+a.acked)
	assert.Zero(t, b.queried+b.presented+b.acked)
	assert.Zero(t, m.setCount())
	assert.Empty(t, n.notices)
}

func TestRun_NoneRequiredSetsMarkerOnce(t *testing.T) {
	m := newCountingMarker(false)
	o, n := newTestOrchestrator(t, m)
	a := &probe{id: "a"}
	b := &probe{id: "b"}
	c := &probe{id: "c"}

	out := o.Run(context.Background(), definitions(a, b, c))

	assert.Equal(t, NoneRequired, out.Kind)
	assert.Len(t, out.RunID, 36)
	assert.Equal(t, 1, m.setCount())
	for _, p := range []*probe{a, b, c} {
		assert.Equal(t, 1, p.queried, p.id)
		assert.Zero(t, p.presented, p.id)
	}
	assert.Empty(t, n.notices)
}

func TestRun_EmptyListIsNoneRequired(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)

	out := o.Run(context.Background(), nil)

	assert.Equal(t, NoneRequired, out.Kind)
	assert.Equal(t, 1, m.setCount())
}

func TestRun_PresentsFirstRequiredOnly(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)
	a := &probe{id: "a", required: false}
	b := &probe{id: "b", required: true, result: Result{Status: "agree"}}
	c := &probe{id: "c", required: true}

	out := o.Run(context.Background(), definitions(a, b, c))

	assert.Equal(t, Acknowledged, out.Kind)
	assert.Equal(t, "b", out.DefinitionID)
	assert.Equal(t, "agree", out.Result.Status)
	assert.Zero(t, a.presented)
	assert.Equal(t, 1, b.presented)
	assert.Equal(t, 1, b.acked)
	assert.Equal(t, Result{Status: "agree"}, b.gotResult)
	assert.Zero(t, c.queried, "lower priority definition must not be queried")
	assert.Zero(t, c.presented)
	assert.Equal(t, 1, m.setCount())
}

func TestRun_NoAcknowledgeStillSetsMarker(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)
	piu := &probe{id: "piu", required: true, noAck: true, result: Result{Status: "done"}}

	out := o.Run(context.Background(), definitions(piu))

	assert.Equal(t, Acknowledged, out.Kind)
	assert.Equal(t, "piu", out.DefinitionID)
	assert.Equal(t, 1, m.setCount())
}

func TestRun_AcknowledgeFailureRunsPolicyOnce(t *testing.T) {
	m := newCountingMarker(false)
	o, n := newTestOrchestrator(t, m)
	a := &probe{id: "a"}
	b := &probe{id: "b", required: true, ackErr: errBoom}
	c := &probe{id: "c", required: true}

	out := o.Run(context.Background(), definitions(a, b, c))

	assert.Equal(t, Failed, out.Kind)
	assert.Equal(t, "b", out.DefinitionID)
	assert.ErrorIs(t, out.Cause, ErrAcknowledgeFailure)
	assert.ErrorIs(t, out.Cause, errBoom)
	require.Len(t, n.notices, 1)
	assert.Equal(t, "ACKNOWLEDGE_FAILURE", n.notices[0].Code)
	assert.Contains(t, n.notices[0].Message, DefaultSupportContact)
	assert.Equal(t, 1, m.setCount())
	assert.Zero(t, c.queried)
	assert.True(t, m.IsSuppressed(context.Background()))
}

func TestRun_QueryFailure(t *testing.T) {
	m := newCountingMarker(false)
	o, n := newTestOrchestrator(t, m)
	a := &probe{id: "a", requiredErr: errBoom}
	b := &probe{id: "b", required: true}

	out := o.Run(context.Background(), definitions(a, b))

	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Cause, ErrQueryFailure)
	assert.Zero(t, a.presented)
	assert.Zero(t, b.queried)
	require.Len(t, n.notices, 1)
	assert.Equal(t, "QUERY_FAILURE", n.notices[0].Code)
	assert.Equal(t, 1, m.setCount())
}

func TestRun_PresentationFailureSkipsAcknowledge(t *testing.T) {
	m := newCountingMarker(false)
	o, n := newTestOrchestrator(t, m)
	a := &probe{id: "a", required: true, presentErr: errBoom}

	out := o.Run(context.Background(), definitions(a))

	assert.Equal(t, Failed, out.Kind)
	assert.ErrorIs(t, out.Cause, ErrPresentationFailure)
	assert.Zero(t, a.acked)
	require.Len(t, n.notices, 1)
	assert.Equal(t, 1, m.setCount())
}

func TestRun_DismissedResultIsAcknowledged(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)
	a := &probe{id: "a", required: true, result: Result{Dismissed: true}}

	out := o.Run(context.Background(), definitions(a))

	assert.Equal(t, Acknowledged, out.Kind)
	assert.True(t, a.gotResult.Dismissed)
}

func TestRun_CancelledContextAbandons(t *testing.T) {
	m := newCountingMarker(false)
	o, n := newTestOrchestrator(t, m)
	ctx, cancel := context.WithCancel(context.Background())

	def := Definition{
		ID:       "a",
		Required: func(context.Context) (bool, error) { return true, nil },
		Present: func(ctx context.Context) (Result, error) {
			cancel()
			<-ctx.Done()
			return Result{}, ctx.Err()
		},
	}

	out := o.Run(ctx, []Definition{def})

	assert.Equal(t, Abandoned, out.Kind)
	assert.Equal(t, "a", out.DefinitionID)
	assert.Zero(t, m.setCount())
	assert.Empty(t, n.notices)
}

func TestRun_CancelAfterAcknowledgeStillSetsMarker(t *testing.T) {
	m := &contextBoundMarker{countingMarker: newCountingMarker(false)}
	o, n := newTestOrchestrator(t, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	def := Definition{
		ID:       "sra",
		Required: func(context.Context) (bool, error) { return true, nil },
		Present:  func(context.Context) (Result, error) { return Result{Status: "agree"}, nil },
		Acknowledge: func(context.Context, Result) error {
			cancel()
			return nil
		},
	}

	out := o.Run(ctx, []Definition{def})

	assert.Equal(t, Acknowledged, out.Kind)
	assert.Zero(t, m.dropped)
	assert.True(t, m.IsSuppressed(context.Background()))
	assert.Empty(t, n.notices)
}

func TestRun_CancelAfterLastQueryStillSetsMarker(t *testing.T) {
	m := &contextBoundMarker{countingMarker: newCountingMarker(false)}
	o, _ := newTestOrchestrator(t, m)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	def := Definition{
		ID: "piu",
		Required: func(context.Context) (bool, error) {
			cancel()
			return false, nil
		},
		Present: func(context.Context) (Result, error) { return Result{}, nil },
	}

	out := o.Run(ctx, []Definition{def})

	assert.Equal(t, NoneRequired, out.Kind)
	assert.Zero(t, m.dropped)
	assert.True(t, m.IsSuppressed(context.Background()))
}

func TestRun_CancelledBeforeStartAbandons(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &probe{id: "a", required: true}

	out := o.Run(ctx, definitions(a))

	assert.Equal(t, Abandoned, out.Kind)
	assert.Zero(t, a.queried)
	assert.Zero(t, m.setCount())
}

func TestRun_SequentialQueries(t *testing.T) {
	m := newCountingMarker(false)
	o, _ := newTestOrchestrator(t, m)

	var order []string
	inFlight := false
	mk := func(id string) Definition {
		return Definition{
			ID: id,
			Required: func(context.Context) (bool, error) {
				require.False(t, inFlight, "queries overlapped")
				inFlight = true
				time.Sleep(time.Millisecond)
				order = append(order, id)
				inFlight = false
				return false, nil
			},
			Present: func(context.Context) (Result, error) { return Result{}, nil },
		}
	}

	o.Run(context.Background(), []Definition{mk("sra"), mk("credit-card-security-policy"), mk("piu")})
	assert.Equal(t, []string{"sra", "credit-card-security-policy", "piu"}, order)
}

func TestRun_MarkerSuppressesNextRun(t *testing.T) {
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	now := start
	clock := marker.ClockFunc(func() time.Time { return now })
	m := marker.NewMemory(clock)
	o := NewOrchestrator(m, nil, nil)
	a := &probe{id: "a", required: true}

	assert.Equal(t, Acknowledged, o.Run(context.Background(), definitions(a)).Kind)

	now = start.Add(23*time.Hour + 59*time.Minute)
	assert.Equal(t, Suppressed, o.Run(context.Background(), definitions(a)).Kind)
	assert.Equal(t, 1, a.presented)

	now = start.Add(24*time.Hour + time.Minute)
	assert.Equal(t, Acknowledged, o.Run(context.Background(), definitions(a)).Kind)
	assert.Equal(t, 2, a.presented)
}
