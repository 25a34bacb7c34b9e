package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/prohmpiriya/glownatura-admin/internal/transport"
)

// navigator tracks the command being run as the current view. A redirect to
// login becomes a one-time notice on stderr.
type navigator struct {
	mu       sync.Mutex
	view     string
	out      io.Writer
	notified bool
}

func newNavigator(out io.Writer) *navigator {
	return &navigator{out: out}
}

func (n *navigator) Show(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.view = view
}

func (n *navigator) CurrentView() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.view
}

func (n *navigator) Redirect(view string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.view = view
	if view != transport.ViewLogin || n.notified {
		return
	}
	n.notified = true
	fmt.Fprintln(n.out, "Session expired, please log in again: glowctl login -email <email> -password <password>")
}

// notifier prints success messages. Failures are reported once, by the
// command's exit path.
type notifier struct {
	out io.Writer
}

func newNotifier(out io.Writer) *notifier {
	return &notifier{out: out}
}

func (n *notifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

func (n *notifier) Error(string, string) {}
