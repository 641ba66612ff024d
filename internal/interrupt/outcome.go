package interrupt

import "fmt"

// Kind classifies how a run ended.
type Kind int

const (
	// Suppressed means a marker was already set; nothing was evaluated.
	Suppressed Kind = iota
	// NoneRequired means every definition answered false.
	NoneRequired
	// Acknowledged means one definition was shown and its result persisted.
	Acknowledged
	// Failed means a stage errored and the failure policy ran.
	Failed
	// Abandoned means the run's context ended before the run settled.
	Abandoned
)

func (k Kind) String() string {
	switch k {
	case Suppressed:
		return "suppressed"
	case NoneRequired:
		return "none_required"
	case Acknowledged:
		return "acknowledged"
	case Failed:
		return "failed"
	case Abandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText renders the kind name in JSON output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the transient result of one run. It is never persisted.
type Outcome struct {
	RunID        string `json:"run_id,omitempty"`
	Kind         Kind   `json:"kind"`
	DefinitionID string `json:"definition_id,omitempty"`
	Result       Result `json:"result"`
	Cause        error  `json:"-"`
}

func (o Outcome) String() string {
	switch {
	case o.Cause != nil && o.DefinitionID != "":
		return fmt.Sprintf("%s(%s): %v", o.Kind, o.DefinitionID, o.Cause)
	case o.Cause != nil:
		return fmt.Sprintf("%s: %v", o.Kind, o.Cause)
	case o.DefinitionID != "":
		return fmt.Sprintf("%s(%s)", o.Kind, o.DefinitionID)
	default:
		return o.Kind.String()
	}
}
