// Package presenter shows interrupt prompts to the user and reports their
// choice back to the orchestrator.
package presenter

import (
	"context"
	"errors"
	"sync"

	"github.com/dotcommander/interstitial/internal/interrupt"
)

// Prompt is the content of one interrupt dialog.
type Prompt struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Body       string   `json:"body,omitempty"`
	StyleClass string   `json:"style_class"`
	Choices    []string `json:"choices,omitempty"`
}

// Presenter opens a prompt and blocks until the user responds, the prompt is
// dismissed, or ctx ends.
type Presenter interface {
	Present(ctx context.Context, p Prompt) (interrupt.Result, error)
}

// Func adapts a function to Presenter.
type Func func(ctx context.Context, p Prompt) (interrupt.Result, error)

// Present implements Presenter.
func (f Func) Present(ctx context.Context, p Prompt) (interrupt.Result, error) { return f(ctx, p) }

// ReadyFunc is called once the prompt surface exists, with its style class.
type ReadyFunc func(styleClass string)

var (
	// ErrNotTerminal is returned when input is not interactive.
	ErrNotTerminal = errors.New("input is not a terminal")
	// ErrInputClosed is returned when input ends before a choice is made.
	ErrInputClosed = errors.New("input closed before a choice was made")
	// ErrPromptOpen is returned when a second prompt is opened while one is showing.
	ErrPromptOpen = errors.New("another prompt is already open")
)

// open tracks the single prompt the dismissal hook can reach.
var open struct {
	mu      sync.Mutex
	current *session
}

type session struct {
	dismissed chan struct{}
	once      sync.Once
}

func (s *session) dismiss() {
	s.once.Do(func() { close(s.dismissed) })
}

func register() (*session, error) {
	open.mu.Lock()
	defer open.mu.Unlock()
	if open.current != nil {
		return nil, ErrPromptOpen
	}
	s := &session{dismissed: make(chan struct{})}
	open.current = s
	return s, nil
}

func unregister(s *session) {
	open.mu.Lock()
	if open.current == s {
		open.current = nil
	}
	open.mu.Unlock()
}

// DismissActive closes the currently open prompt with no choice. The prompt
// resolves with Result{Dismissed: true}. Reports false when nothing is open.
func DismissActive() bool {
	open.mu.Lock()
	s := open.current
	open.mu.Unlock()
	if s == nil {
		return false
	}
	s.dismiss()
	return true
}
