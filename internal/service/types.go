// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DateLayout is the wire and display layout of a due date.
const DateLayout = "2006-01-02"

// Task is the client's copy of a remote task record.
// The server owns ID, CreatedAt and DeletedAt.
type Task struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	DueDate     *Date      `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
}

// Deleted reports whether the server has soft-deleted the task.
func (t Task) Deleted() bool {
	return t.DeletedAt != nil
}

// UnmarshalJSON decodes a task. A blank or null due date decodes as no due
// date rather than a zero date.
func (t *Task) UnmarshalJSON(b []byte) error {
	type plain Task
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		p.DueDate = nil
	}
	*t = Task(p)
	return nil
}

// Date is a calendar date with no time-of-day semantics.
type Date struct {
	time.Time
}

// NewDate returns the given calendar day, stored as midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Time.Format(DateLayout)
}

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD", an RFC 3339 timestamp, "" or null.
// The server stores due dates as timestamps at midnight UTC.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t = t.UTC()
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// NewTask is the body of a creation request.
// Completed is only sent when true; undo re-creation carries it over.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed,omitempty"`
	DueDate     *Date  `json:"dueDate"`
}

// TaskPatch is a partial update. Nil fields are left untouched by the server.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool

	// DueDate set to the zero Date is sent as null, like ClearDueDate.
	DueDate *Date

	// ClearDueDate sends an explicit null due date.
	ClearDueDate bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil && p.DueDate == nil && !p.ClearDueDate
}

// MarshalJSON encodes only the fields that are set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 4)
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Completed != nil {
		body["completed"] = *p.Completed
	}
	switch {
	case p.ClearDueDate, p.DueDate != nil && p.DueDate.IsZero():
		body["dueDate"] = nil
	case p.DueDate != nil:
		body["dueDate"] = p.DueDate.String()
	}
	return json.Marshal(body)
}

// Credentials is the body of a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of a register request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
