package presenter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/dotcommander/interstitial/internal/interrupt"
)

// DismissCommand typed at the prompt closes it as DismissActive would.
const DismissCommand = ":dismiss"

// DefaultChoice is the status returned by prompts that offer no choices.
const DefaultChoice = "done"

type line struct {
	text string
	err  error
}

// Terminal renders prompts as text dialogs on a line-oriented stream.
//
// The first Present starts a goroutine that reads lines from the input. It
// lives until the input returns an error or EOF, and after the last Present
// returns it stays blocked handing over the next unread line. Programs that
// embed a Terminal and outlive it should pass an input they can close.
type Terminal struct {
	in      io.Reader
	out     io.Writer
	force   bool
	onReady ReadyFunc

	mu     sync.Mutex
	active string

	startOnce sync.Once
	lines     chan line
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithForce renders even when input is not a terminal.
func WithForce(force bool) TerminalOption {
	return func(t *Terminal) { t.force = force }
}

// WithOnReady registers a callback fired once each dialog is drawn.
func WithOnReady(fn ReadyFunc) TerminalOption {
	return func(t *Terminal) { t.onReady = fn }
}

// NewTerminal returns a presenter reading from in and drawing to out.
func NewTerminal(in io.Reader, out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{in: in, out: out, lines: make(chan line)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Active returns the style class of the open dialog, or "" when none is open.
func (t *Terminal) Active() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Terminal) setActive(class string) {
	t.mu.Lock()
	t.active = class
	t.mu.Unlock()
}

// Interactive reports whether in is a terminal.
func Interactive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Present implements Presenter.
func (t *Terminal) Present(ctx context.Context, p Prompt) (interrupt.Result, error) {
	if !t.force && !Interactive(t.in) {
		return interrupt.Result{}, ErrNotTerminal
	}

	sess, err := register()
	if err != nil {
		return interrupt.Result{}, err
	}
	defer unregister(sess)

	class := p.StyleClass
	if class == "" {
		class = p.ID
	}
	if err := t.render(p, class); err != nil {
		return interrupt.Result{}, fmt.Errorf("render prompt %q: %w", p.ID, err)
	}
	t.setActive(class)
	defer t.setActive("")
	if t.onReady != nil {
		t.onReady(class)
	}

	t.startOnce.Do(func() { go t.readLines() })

	dismissed := func() (interrupt.Result, error) {
		fmt.Fprintln(t.out, "(dismissed)")
		return interrupt.Result{Dismissed: true}, nil
	}

	for {
		select {
		case <-ctx.Done():
			return interrupt.Result{}, ctx.Err()
		case <-sess.dismissed:
			return dismissed()
		case l, ok := <-t.lines:
			if !ok || l.err != nil {
				return interrupt.Result{}, ErrInputClosed
			}
			input := strings.TrimSpace(l.text)
			if input == DismissCommand {
				sess.dismiss()
				return dismissed()
			}
			if choice, ok := matchChoice(p.Choices, input); ok {
				return interrupt.Result{Status: choice}, nil
			}
			fmt.Fprintf(t.out, "Please choose one of: %s\n> ", strings.Join(p.Choices, ", "))
		}
	}
}

func (t *Terminal) render(p Prompt, class string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n┌─[%s] %s\n", class, p.Title)
	for _, ln := range strings.Split(strings.TrimSpace(p.Body), "\n") {
		if ln != "" {
			fmt.Fprintf(&b, "│ %s\n", ln)
		}
	}
	if len(p.Choices) == 0 {
		fmt.Fprintf(&b, "└─ press Enter to continue, or type %s\n> ", DismissCommand)
	} else {
		b.WriteString("│\n")
		for i, c := range p.Choices {
			fmt.Fprintf(&b, "│ %d) %s\n", i+1, c)
		}
		fmt.Fprintf(&b, "└─ choose a number or name, or type %s\n> ", DismissCommand)
	}
	_, err := io.WriteString(t.out, b.String())
	return err
}

// readLines feeds t.lines for the lifetime of the Terminal. A send blocks
// until some Present receives it.
func (t *Terminal) readLines() {
	defer close(t.lines)
	sc := bufio.NewScanner(t.in)
	for sc.Scan() {
		t.lines <- line{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	t.lines <- line{err: err}
}

func matchChoice(choices []string, input string) (string, bool) {
	if len(choices) == 0 {
		return DefaultChoice, true
	}
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
		return choices[n-1], true
	}
	for _, c := range choices {
		if strings.EqualFold(c, input) {
			return c, true
		}
	}
	return "", false
}
