package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"taskdash/internal/config"
	"taskdash/internal/dashboard"
	"taskdash/internal/exitcode"
	"taskdash/internal/notify"
	"taskdash/internal/recyclebin"
	"taskdash/internal/service"
	"taskdash/internal/session"
)

// errUsage marks argument errors detected by the commands themselves.
var errUsage = errors.New("usage")

// usageErrorf returns a usage error with the given message.
func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// sessions returns the session manager over the credential file in cfg.Dir.
func sessions(cfg *config.Config) *session.Manager {
	return session.NewManager(session.NewFileStore(cfg.TokenPath()), cfg.Log)
}

// notifier prints controller outcomes for a one-shot command.
func notifier(cfg *config.Config, out, errOut io.Writer) *notify.Writer {
	return &notify.Writer{Out: out, ErrOut: errOut, Quiet: cfg.Quiet}
}

func newDashboard(cfg *config.Config, svc service.Service, n notify.Notifier) *dashboard.Controller {
	return dashboard.New(svc, dashboard.WithNotifier(n), dashboard.WithLogger(cfg.Log))
}

func newBin(cfg *config.Config, svc service.Service, n notify.Notifier) *recyclebin.Controller {
	return recyclebin.New(svc, recyclebin.WithNotifier(n), recyclebin.WithLogger(cfg.Log))
}

// exitCode maps an operation error to a process exit code. Controllers have
// already reported the error to the user.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitcode.Success
	case service.IsAuth(err):
		return exitcode.AuthError
	case errors.Is(err, errUsage),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrTaskOutOfRange),
		errors.Is(err, ErrUnknownTask),
		errors.Is(err, dashboard.ErrTitleRequired),
		errors.Is(err, dashboard.ErrActionInProgress),
		errors.Is(err, dashboard.ErrNoPendingDelete),
		errors.Is(err, dashboard.ErrTaskNotFound),
		errors.Is(err, dashboard.ErrNotEditing),
		errors.Is(err, service.ErrNotFound):
		return exitcode.UserError
	default:
		return exitcode.BackendError
	}
}

// printError prints err in the CLI's error format and returns its exit code.
func printError(errOut io.Writer, err error) int {
	msg := err.Error()
	if errors.Is(err, errUsage) {
		msg = strings.TrimPrefix(msg, errUsage.Error()+": ")
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	return exitCode(err)
}

// finish returns the exit code for a controller error. Errors the controller
// rejected locally without notifying are printed here.
func finish(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, dashboard.ErrActionInProgress),
		errors.Is(err, dashboard.ErrNoPendingDelete),
		errors.Is(err, dashboard.ErrTaskNotFound),
		errors.Is(err, dashboard.ErrNotEditing):
		return printError(errOut, err)
	}
	return exitCode(err)
}

// stdin returns r, or os.Stdin when r is nil.
func stdin(r io.Reader) io.Reader {
	if r == nil {
		return os.Stdin
	}
	return r
}

// readLine reads one line and trims it. A final line without a newline is
// returned without error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// prompt asks for a value on w and reads the answer.
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	return readLine(r)
}

// promptSecret reads a value without echo when in is the terminal, and reads
// a plain line otherwise.
func promptSecret(in io.Reader, r *bufio.Reader, w io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return prompt(r, w, label)
}

// confirm asks a yes/no question; anything but "y" or "yes" is no.
func confirm(r *bufio.Reader, w io.Writer, question string) bool {
	answer, err := prompt(r, w, question+" [y/N] ")
	if err != nil {
		fmt.Fprintln(w)
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// parseDue parses a --due value. Empty means no due date.
func parseDue(s string) (*service.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := service.ParseDate(s)
	if err != nil {
		return nil, usageErrorf("invalid due date: %s (want YYYY-MM-DD)", s)
	}
	return &d, nil
}

// ParseInterspersed parses flags that may appear before, between or after
// positional arguments, and returns the positionals in order. Everything
// after "--" is positional.
func ParseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var words []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(words, rest...), nil
		}
		if len(rest) == 0 {
			return words, nil
		}
		words = append(words, rest[0])
		args = rest[1:]
	}
}

// optionalString is a string flag that remembers whether it was set.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}
