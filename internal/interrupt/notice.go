package interrupt

import (
	"context"
	"fmt"
	"io"
)

// DefaultSupportContact is named in failure notices when none is configured.
const DefaultSupportContact = "techhelp@cru.org"

// Notice is the user-facing message emitted once per failed run.
type Notice struct {
	DefinitionID string
	Code         string
	Message      string
}

// Notifier surfaces a failure notice to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notice) error

// Notify implements Notifier.
func (f NotifierFunc) Notify(ctx context.Context, n Notice) error { return f(ctx, n) }

// FailureMessage builds the notice text naming the support contact.
func FailureMessage(supportContact string) string {
	if supportContact == "" {
		supportContact = DefaultSupportContact
	}
	return "We're sorry, but we couldn't save your choice. " +
		"We won't interrupt you again today from this browser. " +
		"You may want to try again in a different browser. " +
		"If you continue to have problems, please contact " + supportContact + "."
}

// WriterNotifier prints notices to w, one per line.
type WriterNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (n WriterNotifier) Notify(_ context.Context, notice Notice) error {
	_, err := fmt.Fprintln(n.W, notice.Message)
	return err
}
