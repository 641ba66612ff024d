package interrupt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dotcommander/interstitial/internal/marker"
)

// Orchestrator walks an ordered definition list once per page load and shows
// at most one prompt.
type Orchestrator struct {
	marker  marker.Store
	failure *FailurePolicy
	logger  *slog.Logger
}

// NewOrchestrator builds an orchestrator over store. A nil policy gets a
// default one writing to the same store with no notifier.
func NewOrchestrator(store marker.Store, policy *FailurePolicy, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if policy == nil {
		policy = &FailurePolicy{Marker: store, Logger: logger}
	}
	if policy.Logger == nil {
		policy.Logger = logger
	}
	return &Orchestrator{marker: store, failure: policy, logger: logger}
}

// Run evaluates defs in order. Steps are strictly sequential: definition
// i+1 is queried only after definition i answered false. Every terminal
// outcome except Abandoned leaves the marker set.
func (o *Orchestrator) Run(ctx context.Context, defs []Definition) Outcome {
	runID := uuid.NewString()
	log := o.logger.With("run_id", runID)

	out := o.run(ctx, log, defs)
	out.RunID = runID
	attrs := []any{"outcome", out.Kind.String()}
	if out.DefinitionID != "" {
		attrs = append(attrs, "definition", out.DefinitionID)
	}
	if out.Cause != nil {
		attrs = append(attrs, "error", out.Cause.Error())
	}
	log.Info("interrupt run finished", attrs...)
	return out
}

func (o *Orchestrator) run(ctx context.Context, log *slog.Logger, defs []Definition) Outcome {
	if o.marker.IsSuppressed(ctx) {
		return Outcome{Kind: Suppressed}
	}

	for _, def := range defs {
		if ctx.Err() != nil {
			return abandoned(def.ID, ctx.Err())
		}

		required, err := def.Required(ctx)
		if err != nil {
			return o.fail(ctx, StageQuery, def.ID, err)
		}
		log.Debug("interrupt queried", "definition", def.ID, "required", required)
		if !required {
			continue
		}

		log.Debug("interrupt presenting", "definition", def.ID, "stage", string(StagePresent))
		result, err := def.Present(ctx)
		if err != nil {
			return o.fail(ctx, StagePresent, def.ID, err)
		}

		if def.Acknowledge != nil {
			if err := def.Acknowledge(ctx, result); err != nil {
				return o.fail(ctx, StageAcknowledge, def.ID, err)
			}
		}

		o.marker.SetSuppressed(context.WithoutCancel(ctx))
		return Outcome{Kind: Acknowledged, DefinitionID: def.ID, Result: result}
	}

	o.marker.SetSuppressed(context.WithoutCancel(ctx))
	return Outcome{Kind: NoneRequired}
}

// fail routes a stage error to the failure policy, unless the error is the
// run's own cancellation, which abandons the run silently.
func (o *Orchestrator) fail(ctx context.Context, stage Stage, id string, err error) Outcome {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return abandoned(id, err)
	}
	cause := &StageError{Stage: stage, DefinitionID: id, Err: err}
	o.failure.OnFailure(ctx, cause, id)
	return Outcome{Kind: Failed, DefinitionID: id, Cause: cause}
}

func abandoned(id string, cause error) Outcome {
	return Outcome{Kind: Abandoned, DefinitionID: id, Cause: cause}
}
