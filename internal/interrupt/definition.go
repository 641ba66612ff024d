package interrupt

import (
	"context"
	"errors"
	"fmt"
)

// Result is the user's response to a prompt. A dismissal from inside the
// prompt resolves with Dismissed set and an empty Status.
type Result struct {
	Status    string `json:"status,omitempty"`
	Dismissed bool   `json:"dismissed,omitempty"`
}

// Definition describes one interrupt type. Position in the list passed to
// Run is its priority, index 0 highest.
type Definition struct {
	ID string

	// Required asks whether the interrupt must be shown now.
	Required func(ctx context.Context) (bool, error)

	// Present shows the prompt and blocks until the user responds.
	Present func(ctx context.Context) (Result, error)

	// Acknowledge persists the result remotely. Nil means nothing to persist.
	Acknowledge func(ctx context.Context, r Result) error
}

// ErrInvalidDefinition is returned by ValidateDefinitions.
var ErrInvalidDefinition = errors.New("invalid interrupt definition")

// ValidateDefinitions checks that ids are non-empty and unique and that the
// required capabilities are present.
func ValidateDefinitions(defs []Definition) error {
	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("%w: definition %d has empty id", ErrInvalidDefinition, i)
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, d.ID)
		}
		seen[d.ID] = struct{}{}
		if d.Required == nil {
			return fmt.Errorf("%w: %q has no required query", ErrInvalidDefinition, d.ID)
		}
		if d.Present == nil {
			return fmt.Errorf("%w: %q has no presentation", ErrInvalidDefinition, d.ID)
		}
	}
	return nil
}

// IDs returns definition ids in priority order.
func IDs(defs []Definition) []string {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}
	return ids
}
