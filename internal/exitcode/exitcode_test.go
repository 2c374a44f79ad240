package exitcode_test

import (
	"testing"

	"taskdash/internal/exitcode"
)

func TestName(t *testing.T) {
	tests := map[int]string{
		exitcode.Success:      "ok",
		exitcode.UserError:    "user error",
		exitcode.AuthError:    "auth error",
		exitcode.BackendError: "backend error",
		42:                    "exit 42",
	}
	for code, want := range tests {
		if got := exitcode.Name(code); got != want {
			t.Errorf("Name(%d) = %q, want %q", code, got, want)
		}
	}
}
