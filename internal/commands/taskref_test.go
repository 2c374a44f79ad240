package commands

import (
	"errors"
	"testing"

	"taskdash/internal/service"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	ref, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Num != 5 {
		t.Errorf("expected Num 5, got %d", ref.Num)
	}
	if ref.ID != "" {
		t.Errorf("expected no ID, got %q", ref.ID)
	}
}

func TestParseTaskRef_ID(t *testing.T) {
	ref, err := ParseTaskRef([]string{"65f1c0ffee"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ID != "65f1c0ffee" {
		t.Errorf("expected ID 65f1c0ffee, got %q", ref.ID)
	}
	if ref.Num != 0 {
		t.Errorf("expected Num 0, got %d", ref.Num)
	}
}

func TestParseTaskRef_Empty(t *testing.T) {
	for _, args := range [][]string{nil, {}, {"  "}} {
		_, err := ParseTaskRef(args)
		if !errors.Is(err, ErrTaskRefRequired) {
			t.Errorf("ParseTaskRef(%q): expected ErrTaskRefRequired, got %v", args, err)
		}
	}
}

func TestParseTaskRef_Zero(t *testing.T) {
	_, err := ParseTaskRef([]string{"0"})
	if !errors.Is(err, ErrTaskOutOfRange) {
		t.Fatalf("expected ErrTaskOutOfRange, got %v", err)
	}
	if err.Error() != "task number out of range: 0" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestParseTaskRef_TooManyArgs(t *testing.T) {
	_, err := ParseTaskRef([]string{"1", "2"})
	if err == nil {
		t.Fatal("expected error for extra argument")
	}
	if !errors.Is(err, errUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestTaskRef_Resolve(t *testing.T) {
	tasks := []service.Task{{ID: "a", Title: "first"}, {ID: "b", Title: "second"}}

	tests := []struct {
		name    string
		ref     TaskRef
		wantNum int
		wantID  string
		wantErr error
	}{
		{"first by number", TaskRef{Num: 1}, 1, "a", nil},
		{"second by number", TaskRef{Num: 2}, 2, "b", nil},
		{"by id", TaskRef{ID: "b"}, 2, "b", nil},
		{"past end", TaskRef{Num: 3}, 0, "", ErrTaskOutOfRange},
		{"unknown id", TaskRef{ID: "zzz"}, 0, "", ErrUnknownTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			num, task, err := tt.ref.Resolve(tasks)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if num != tt.wantNum || task.ID != tt.wantID {
				t.Errorf("expected %d/%s, got %d/%s", tt.wantNum, tt.wantID, num, task.ID)
			}
		})
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"123", true},
		{"0", true},
		{"", false},
		{"12a", false},
		{"٣", false},
		{"-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isAllDigits(tt.input); got != tt.expected {
				t.Errorf("isAllDigits(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := newShellFlags("edit")
	title := fs.String("title", "", "")
	yes := fs.Bool("yes", false, "")

	words, err := ParseInterspersed(fs, []string{"3", "--title", "New", "--yes", "--", "--literal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *title != "New" || !*yes {
		t.Errorf("flags not parsed: title=%q yes=%v", *title, *yes)
	}
	if len(words) != 2 || words[0] != "3" || words[1] != "--literal" {
		t.Errorf("unexpected positionals %q", words)
	}
}
