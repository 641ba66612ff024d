package interrupt

import (
	"errors"
	"fmt"
)

// Stage names where in a run an error occurred.
type Stage string

const (
	StageQuery       Stage = "query"
	StagePresent     Stage = "present"
	StageAcknowledge Stage = "acknowledge"
)

// Sentinels matched by StageError through errors.Is.
var (
	ErrQueryFailure        = errors.New("interrupt required query failed")
	ErrPresentationFailure = errors.New("interrupt presentation failed")
	ErrAcknowledgeFailure  = errors.New("interrupt acknowledgment failed")
)

// StageError wraps a failure from one definition's capability.
// It implements models.RecoverableError.
type StageError struct {
	Stage        Stage
	DefinitionID string
	Err          error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Stage, e.DefinitionID, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func (e *StageError) ErrorCode() string {
	switch e.Stage {
	case StageQuery:
		return "QUERY_FAILURE"
	case StagePresent:
		return "PRESENTATION_FAILURE"
	case StageAcknowledge:
		return "ACKNOWLEDGE_FAILURE"
	default:
		return "INTERRUPT_FAILURE"
	}
}

func (e *StageError) Context() map[string]string {
	return map[string]string{
		"stage":      string(e.Stage),
		"definition": e.DefinitionID,
	}
}

func (e *StageError) SuggestedAction() string {
	switch e.Stage {
	case StageQuery, StageAcknowledge:
		return "check that the interrupt service is reachable, then run `interstitial marker clear` to retry before the marker expires"
	default:
		return "run from an interactive terminal, then run `interstitial marker clear` to retry before the marker expires"
	}
}

func (e *StageError) Is(target error) bool {
	switch e.Stage {
	case StageQuery:
		return target == ErrQueryFailure
	case StagePresent:
		return target == ErrPresentationFailure
	case StageAcknowledge:
		return target == ErrAcknowledgeFailure
	}
	return false
}
