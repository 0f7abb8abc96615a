package model

import (
	"fmt"
	"time"
)

// Priority is the urgency label of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority converts a raw label into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Status is the board column a task currently lives in.
type Status string

const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// Statuses is the fixed display order of the board columns.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human-readable column title.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Index returns the position of s in Statuses, or -1.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// ParseStatus converts a raw label into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// DateLayout is the calendar-date format used for input and display.
const DateLayout = "2006-01-02"

// Task is a single card on the board.
type Task struct {
	// ID is assigned once at creation and never changes.
	ID string `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// DueDate is a calendar day, normalized with Date. Nil means no due date.
	DueDate *time.Time `json:"due_date,omitempty"`

	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	// Tags are free-form labels. Empty and nil are equivalent.
	Tags []string `json:"tags,omitempty"`
}

// IsOpen reports whether the task still needs attention.
func (t Task) IsOpen() bool {
	return t.Status != StatusDone
}

// IsOverdue reports whether an open task's due day is before now's day.
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.IsOpen() && t.DueDate.Before(Date(now))
}

// Clone returns a deep copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if len(t.Tags) > 0 {
		c.Tags = append([]string(nil), t.Tags...)
	} else {
		c.Tags = nil
	}
	return c
}

// Date strips the time of day from t, keeping the calendar day as seen in
// t's own location, and returns it as midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatePtr is Date for optional values.
func DatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := Date(*t)
	return &d
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Date(*a).Equal(Date(*b))
}
