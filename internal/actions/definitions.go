package actions

import (
	"context"
	"fmt"

	"github.com/dotcommander/interstitial/internal/app"
	"github.com/dotcommander/interstitial/internal/interrupt"
	"github.com/dotcommander/interstitial/internal/models"
	"github.com/dotcommander/interstitial/internal/presenter"
)

// Transport is the subset of the interrupt service client the pipeline needs.
type Transport interface {
	IsInterruptRequired(ctx context.Context, interruptType string) (bool, error)
	UpdateAgreementStatus(ctx context.Context, interruptType, status string) error
}

// updatePather is implemented by transports that resolve the record endpoint
// per interrupt type, such as *remote.Client.
type updatePather interface {
	UpdatePath(interruptType string) (string, error)
}

// DefinitionView describes one configured interrupt for listing commands.
type DefinitionView struct {
	Priority    int      `json:"priority"`
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	StyleClass  string   `json:"style_class"`
	Choices     []string `json:"choices,omitempty"`
	Acknowledge bool     `json:"acknowledge"`
	UpdatePath  string   `json:"update_path,omitempty"`
}

// ListDefinitions returns the configured interrupts in priority order.
func ListDefinitions(interrupts []app.InterruptSettings) []DefinitionView {
	out := make([]DefinitionView, len(interrupts))
	for i, in := range interrupts {
		out[i] = DefinitionView{
			Priority:    i + 1,
			ID:          in.ID,
			Title:       in.Title,
			StyleClass:  in.StyleClass,
			Choices:     in.Choices,
			Acknowledge: in.Acknowledge,
			UpdatePath:  in.UpdatePath,
		}
	}
	return out
}

// PromptFor converts interrupt settings to the prompt a presenter draws.
func PromptFor(in app.InterruptSettings) presenter.Prompt {
	return presenter.Prompt{
		ID:         in.ID,
		Title:      in.Title,
		Body:       in.Body,
		StyleClass: in.StyleClass,
		Choices:    in.Choices,
	}
}

// AcknowledgedStatus is the status sent to the service for a result.
// A dismissal is recorded as "dismissed".
func AcknowledgedStatus(r interrupt.Result) string {
	if r.Dismissed || r.Status == "" {
		return string(models.AgreementDismissed)
	}
	return r.Status
}

// BuildDefinitions wires settings, transport and presenter into the ordered
// definition list the orchestrator runs. When the transport resolves update
// paths, an acknowledging interrupt without one is rejected here rather than
// after the user has answered.
func BuildDefinitions(interrupts []app.InterruptSettings, tr Transport, p presenter.Presenter) ([]interrupt.Definition, error) {
	if tr == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if p == nil {
		return nil, fmt.Errorf("presenter is required")
	}
	if err := app.ValidateInterrupts(interrupts); err != nil {
		return nil, err
	}
	if up, ok := tr.(updatePather); ok {
		for i, in := range interrupts {
			if !in.Acknowledge {
				continue
			}
			if _, err := up.UpdatePath(in.ID); err != nil {
				return nil, fmt.Errorf("interrupts[%d]: acknowledge needs an update_path: %w", i, err)
			}
		}
	}

	defs := make([]interrupt.Definition, 0, len(interrupts))
	for _, in := range interrupts {
		id := in.ID
		prompt := PromptFor(in)
		def := interrupt.Definition{
			ID: id,
			Required: func(ctx context.Context) (bool, error) {
				return tr.IsInterruptRequired(ctx, id)
			},
			Present: func(ctx context.Context) (interrupt.Result, error) {
				return p.Present(ctx, prompt)
			},
		}
		if in.Acknowledge {
			def.Acknowledge = func(ctx context.Context, r interrupt.Result) error {
				return tr.UpdateAgreementStatus(ctx, id, AcknowledgedStatus(r))
			}
		}
		defs = append(defs, def)
	}

	if err := interrupt.ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// UpdatePaths collects per-interrupt update path overrides from settings.
func UpdatePaths(interrupts []app.InterruptSettings) map[string]string {
	paths := make(map[string]string)
	for _, in := range interrupts {
		if in.UpdatePath != "" {
			paths[in.ID] = in.UpdatePath
		}
	}
	return paths
}
