package interrupt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dotcommander/interstitial/internal/marker"
	"github.com/dotcommander/interstitial/internal/models"
)

// FailurePolicy is the single fail-safe path for every stage error: it
// suppresses the pipeline for the day, tells the user once, and never retries.
type FailurePolicy struct {
	Marker         marker.Store
	Notifier       Notifier
	SupportContact string
	Logger         *slog.Logger
}

// OnFailure runs the policy. The marker is written before the notice.
func (p *FailurePolicy) OnFailure(ctx context.Context, cause error, definitionID string) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p.Marker.SetSuppressed(context.WithoutCancel(ctx))

	code := "INTERRUPT_FAILURE"
	attrs := []any{"definition", definitionID, "error", errString(cause)}
	var re models.RecoverableError
	if errors.As(cause, &re) {
		code = re.ErrorCode()
		attrs = append(attrs, "stage", re.Context()["stage"])
	}
	attrs = append(attrs, "error_code", code)
	logger.Error("interrupt pipeline failed, suppressed for today", attrs...)

	if p.Notifier == nil {
		return
	}
	notice := Notice{
		DefinitionID: definitionID,
		Code:         code,
		Message:      FailureMessage(p.SupportContact),
	}
	if err := p.Notifier.Notify(context.WithoutCancel(ctx), notice); err != nil {
		logger.Warn("failure notice not delivered", "definition", definitionID, "error", err.Error())
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
