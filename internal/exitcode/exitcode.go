// Package exitcode defines exit codes for the CLI.
package exitcode

import "strconv"

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, empty title, unknown task).
	UserError = 1

	// AuthError indicates a missing, undecodable or rejected session.
	AuthError = 2

	// BackendError indicates a network or server error.
	BackendError = 3
)

// Name returns a short label for code, used in debug logs.
func Name(code int) string {
	switch code {
	case Success:
		return "ok"
	case UserError:
		return "user error"
	case AuthError:
		return "auth error"
	case BackendError:
		return "backend error"
	default:
		return "exit " + strconv.Itoa(code)
	}
}
