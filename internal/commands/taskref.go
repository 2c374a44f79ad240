package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"taskdash/internal/service"
)

// TaskRef is a parsed task reference: the 1-based number printed by list or
// bin, or a raw task ID.
type TaskRef struct {
	Num int    // 1-based position, 0 when ID is set
	ID  string // task ID, empty when Num is set
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskOutOfRange indicates a number past the end of the list.
	ErrTaskOutOfRange = errors.New("task number out of range")

	// ErrUnknownTask indicates an ID that is not in the list.
	ErrUnknownTask = errors.New("task not found")
)

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
//  1. No args (or a blank one) → ErrTaskRefRequired
//  2. More than one arg → error: unexpected argument
//  3. All digits → numeric reference, which must be at least 1
//  4. Anything else → task ID
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, usageErrorf("unexpected argument: %s", args[1])
	}

	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if !isAllDigits(arg) {
		return TaskRef{ID: arg}, nil
	}

	num, err := strconv.Atoi(arg)
	if err != nil {
		return TaskRef{}, usageErrorf("invalid task reference: %s", arg)
	}
	if num < 1 {
		return TaskRef{}, fmt.Errorf("%w: %d", ErrTaskOutOfRange, num)
	}
	return TaskRef{Num: num}, nil
}

// String returns the reference as typed.
func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// Resolve finds the referenced task in tasks (server order) and returns it
// with its 1-based position.
func (r TaskRef) Resolve(tasks []service.Task) (int, service.Task, error) {
	if r.ID != "" {
		for i, t := range tasks {
			if t.ID == r.ID {
				return i + 1, t, nil
			}
		}
		return 0, service.Task{}, fmt.Errorf("%w: %s", ErrUnknownTask, r.ID)
	}
	if r.Num < 1 || r.Num > len(tasks) {
		return 0, service.Task{}, fmt.Errorf("%w: %d", ErrTaskOutOfRange, r.Num)
	}
	return r.Num, tasks[r.Num-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
