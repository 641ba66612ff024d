package actions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/interrupt"
	"github.com/dotcommander/interstitial/internal/marker"
	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/presenter"
)

// PipelineOptions carries everything one run needs.
type PipelineOptions struct {
	BrowserContext string
	SupportContact string
	Interrupts     []app.InterruptSettings
	Transport      Transport
	Presenter      presenter.Presenter
	Notifier       interrupt.Notifier
	Clock          marker.Clock
	Logger         *slog.Logger
}

// RunReport is the CLI-facing summary of one run.
type RunReport struct {
	RunID           string            `json:"run_id"`
	BrowserContext  string            `json:"browser_context"`
	Outcome         interrupt.Outcome `json:"outcome"`
	ErrorCode       string            `json:"error_code,omitempty"`
	Error           string            `json:"error,omitempty"`
	SuppressedUntil *time.Time        `json:"suppressed_until,omitempty"`
}

// RunPipeline runs the interrupt pipeline once against the SQLite marker for
// opts.BrowserContext. Stage failures are reported in the RunReport, not as
// an error: the failure policy has already handled them.
func RunPipeline(ctx context.Context, db *sql.DB, opts PipelineOptions) (*RunReport, error) {
	if opts.BrowserContext == "" {
		opts.BrowserContext = models.DefaultBrowserContext
	}
	defs, err := BuildDefinitions(opts.Interrupts, opts.Transport, opts.Presenter)
	if err != nil {
		return nil, fmt.Errorf("failed to build interrupt definitions: %w", err)
	}

	markers := marker.NewSQLite(db, opts.BrowserContext, opts.Clock, opts.Logger)
	policy := &interrupt.FailurePolicy{
		Marker:         markers,
		Notifier:       opts.Notifier,
		SupportContact: opts.SupportContact,
		Logger:         opts.Logger,
	}
	out := interrupt.NewOrchestrator(markers, policy, opts.Logger).Run(ctx, defs)

	report := &RunReport{
		RunID:          out.RunID,
		BrowserContext: opts.BrowserContext,
		Outcome:        out,
	}
	if out.Cause != nil {
		report.Error = out.Cause.Error()
		var re models.RecoverableError
		if errors.As(out.Cause, &re) {
			report.ErrorCode = re.ErrorCode()
		}
	}
	if exp, err := markers.ExpiresAt(context.WithoutCancel(ctx)); err == nil && exp != nil {
		report.SuppressedUntil = exp
	}
	return report, nil
}
