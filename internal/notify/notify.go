// Package notify separates operation outcomes from how they are shown.
//
// Controllers emit a Notification for every user-visible outcome; an observer
// (a terminal writer, a test recorder) decides how to present it.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Kind classifies a notification.
type Kind int

const (
	// Success is a transient confirmation.
	Success Kind = iota

	// Failure is a transient error message. Prior state was left intact.
	Failure

	// Redirect asks the host to send the user to Target (the login entry point).
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// LoginTarget is the Target of redirects to the authentication entry point.
const LoginTarget = "login"

// Notification is one outcome to present.
type Notification struct {
	Kind    Kind
	Message string

	// Err is the underlying error for Failure and Redirect.
	Err error

	// Target is set for Redirect.
	Target string
}

// Notifier observes notifications.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to Notifier.
type Func func(Notification)

// Notify calls f(n).
func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Successf builds a Success notification.
func Successf(format string, args ...any) Notification {
	return Notification{Kind: Success, Message: fmt.Sprintf(format, args...)}
}

// Failed builds a Failure notification.
func Failed(msg string, err error) Notification {
	return Notification{Kind: Failure, Message: msg, Err: err}
}

// ToLogin builds a Redirect to the login entry point.
func ToLogin(err error) Notification {
	return Notification{Kind: Redirect, Message: "session expired or invalid", Err: err, Target: LoginTarget}
}

// Recorder keeps every notification in order. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Count returns how many notifications of kind k were recorded.
func (r *Recorder) Count(k Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Kind == k {
			n++
		}
	}
	return n
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Writer prints notifications for a terminal: successes to Out, failures and
// redirects to ErrOut using the CLI's "error: " prefix.
type Writer struct {
	Out    io.Writer
	ErrOut io.Writer

	// Quiet suppresses successes.
	Quiet bool

	mu sync.Mutex
}

// Notify implements Notifier. It is safe for concurrent use.
func (w *Writer) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch n.Kind {
	case Success:
		if !w.Quiet {
			fmt.Fprintln(w.Out, n.Message)
		}
	case Failure:
		if n.Err != nil {
			fmt.Fprintf(w.ErrOut, "error: %s: %v\n", n.Message, n.Err)
		} else {
			fmt.Fprintf(w.ErrOut, "error: %s\n", n.Message)
		}
	case Redirect:
		fmt.Fprintf(w.ErrOut, "error: %s (run: taskdash %s)\n", n.Message, n.Target)
	}
}
