// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdash/internal/service"
)

const (
	// dueLayout mirrors a short locale date: "Jan 2, 2006".
	dueLayout = "Jan 2, 2006"

	// deletedLayout is always printed in UTC.
	deletedLayout = "Jan 2, 2006 15:04 UTC"
)

// FormatTask formats one active task.
// Format: "{N:>4}  [x] {TITLE}[  (due {DATE})]\n", then the description on
// its own line indented under the title, if present.
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("%4d  [%s] %s", num, mark, normalizeTitle(task.Title))
	if task.DueDate != nil && !task.DueDate.IsZero() {
		line += fmt.Sprintf("  (due %s)", task.DueDate.Format(dueLayout))
	}
	fmt.Fprintln(w, line)
	if desc := normalizeText(task.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatDeletedTask formats one recycle-bin entry.
// Format: "{N:>4}  {TITLE}  (deleted {TIME})\n".
func FormatDeletedTask(w io.Writer, num int, task service.Task) {
	line := fmt.Sprintf("%4d  %s", num, normalizeTitle(task.Title))
	if task.DeletedAt != nil {
		line += fmt.Sprintf("  (deleted %s)", task.DeletedAt.UTC().Format(deletedLayout))
	}
	fmt.Fprintln(w, line)
	if desc := normalizeText(task.Description); desc != "" {
		fmt.Fprintf(w, "          %s\n", desc)
	}
}

// FormatWelcome prints the greeting for a session.
func FormatWelcome(w io.Writer, name string) {
	if strings.TrimSpace(name) == "" {
		name = "there"
	}
	fmt.Fprintf(w, "Hey %s, Welcome\n", name)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
