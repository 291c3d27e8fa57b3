package domain

import (
	"slices"
	"strings"
)

// Status is the workflow state of a task and the identifier of the column holding it.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

var validStatuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Statuses returns every status in default display order.
func Statuses() []Status {
	return slices.Clone(validStatuses)
}

// ParseStatus normalizes raw input into a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return slices.Contains(validStatuses, s)
}

// DefaultTitle returns the display title used when no column title is configured.
func (s Status) DefaultTitle() string {
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

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Priorities returns every priority from lowest to highest.
func Priorities() []Priority {
	return slices.Clone(validPriorities)
}

// ParsePriority normalizes raw input into a known priority.
func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

func (p Priority) Valid() bool {
	return slices.Contains(validPriorities, p)
}
