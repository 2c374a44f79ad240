package dashboard

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskdash/internal/service"
)

// Filter selects tasks by completion.
type Filter int

const (
	FilterAll Filter = iota
	FilterCompleted
	FilterIncomplete
)

func (f Filter) String() string {
	switch f {
	case FilterCompleted:
		return "completed"
	case FilterIncomplete:
		return "incomplete"
	default:
		return "all"
	}
}

// ParseFilter parses "all", "completed" or "incomplete". Empty means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "incomplete", "open":
		return FilterIncomplete, nil
	default:
		return FilterAll, fmt.Errorf("invalid filter: %s", s)
	}
}

// Sort orders the view.
type Sort int

const (
	// SortUnset keeps the filtered order.
	SortUnset Sort = iota
	SortNewest
	SortOldest
	SortTitleAsc
	SortTitleDesc
)

func (s Sort) String() string {
	switch s {
	case SortNewest:
		return "newest"
	case SortOldest:
		return "oldest"
	case SortTitleAsc:
		return "az"
	case SortTitleDesc:
		return "za"
	default:
		return ""
	}
}

// ParseSort parses "newest", "oldest", "az" (or "title-asc") and "za" (or
// "title-desc"). Empty means unset.
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortUnset, nil
	case "newest":
		return SortNewest, nil
	case "oldest":
		return SortOldest, nil
	case "az", "title-asc":
		return SortTitleAsc, nil
	case "za", "title-desc":
		return SortTitleDesc, nil
	default:
		return SortUnset, fmt.Errorf("invalid sort option: %s", s)
	}
}

// Query is the presentational state that shapes the view.
type Query struct {
	Search string
	Filter Filter
	Sort   Sort

	// Locale drives title collation. The zero value is the root collation.
	Locale language.Tag
}

// View filters, searches and sorts tasks. It is pure: the input slice is
// never modified and identical inputs give identical output.
//
// Search is a case-folded substring match on title or description; an empty
// term matches everything. Sorting is stable.
func View(tasks []service.Task, q Query) []service.Task {
	fold := cases.Fold()
	term := fold.String(q.Search)

	out := make([]service.Task, 0, len(tasks))
	for _, t := range tasks {
		switch q.Filter {
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		case FilterIncomplete:
			if t.Completed {
				continue
			}
		}
		if term != "" &&
			!strings.Contains(fold.String(t.Title), term) &&
			!strings.Contains(fold.String(t.Description), term) {
			continue
		}
		out = append(out, t)
	}

	switch q.Sort {
	case SortNewest:
		slices.SortStableFunc(out, func(a, b service.Task) int { return b.CreatedAt.Compare(a.CreatedAt) })
	case SortOldest:
		slices.SortStableFunc(out, func(a, b service.Task) int { return a.CreatedAt.Compare(b.CreatedAt) })
	case SortTitleAsc:
		col := collate.New(q.Locale)
		slices.SortStableFunc(out, func(a, b service.Task) int { return col.CompareString(a.Title, b.Title) })
	case SortTitleDesc:
		col := collate.New(q.Locale)
		slices.SortStableFunc(out, func(a, b service.Task) int { return col.CompareString(b.Title, a.Title) })
	}
	return out
}
