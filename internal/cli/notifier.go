package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/alexanderramin/daoban/internal/apiclient"
	"github.com/alexanderramin/daoban/internal/cli/formatter"
)

// ConfirmFunc asks whether a failed request should be retried.
type ConfirmFunc func(ev apiclient.ErrorEvent) (bool, error)

// Notifier renders API error events as they are published and remembers the
// retryable ones so they can be offered for replay once the command is done.
type Notifier struct {
	out     io.Writer
	confirm ConfirmFunc

	mu      sync.Mutex
	pending []apiclient.ErrorEvent
}

// NewNotifier creates a Notifier that writes to out. A nil confirm uses a
// huh prompt.
func NewNotifier(out io.Writer, confirm ConfirmFunc) *Notifier {
	if confirm == nil {
		confirm = promptRetry
	}
	return &Notifier{out: out, confirm: confirm}
}

// Handle is the bus subscriber.
func (n *Notifier) Handle(ev apiclient.ErrorEvent) {
	fmt.Fprintln(n.out, formatter.RenderErrorBox(ev.Title, ev.Message, ev.Retryable))
	if ev.Retryable && ev.Retry != nil {
		n.mu.Lock()
		n.pending = append(n.pending, ev)
		n.mu.Unlock()
	}
}

// Pending returns the retryable events not yet offered.
func (n *Notifier) Pending() []apiclient.ErrorEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]apiclient.ErrorEvent(nil), n.pending...)
}

func (n *Notifier) take() []apiclient.ErrorEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}

// OfferRetries asks about each pending retryable failure and replays the
// accepted ones. A replay that fails again is published, rendered and
// offered again until the user dismisses it. It returns how many replays
// succeeded.
func (n *Notifier) OfferRetries(ctx context.Context, app *App) (int, error) {
	if !app.interactive() {
		n.take()
		return 0, nil
	}
	replayed := 0
	for {
		batch := n.take()
		if len(batch) == 0 {
			return replayed, nil
		}
		for _, ev := range batch {
			ok, err := n.confirm(ev)
			if err != nil {
				return replayed, fmt.Errorf("retry prompt: %w", err)
			}
			if !ok {
				continue
			}
			if err := app.replay(ctx, *ev.Retry); err != nil {
				continue
			}
			replayed++
			fmt.Fprintln(n.out, formatter.StyleGreen.Render("✔ Retried ")+formatter.Dim(ev.Retry.Method+" "+ev.Retry.Path))
		}
	}
}

func promptRetry(ev apiclient.ErrorEvent) (bool, error) {
	retry := true
	title := "Retry " + ev.Retry.Method + " " + ev.Retry.Path + "?"
	if err := confirmForm(title, ev.Message, &retry).Run(); err != nil {
		return false, err
	}
	return retry, nil
}
