package domain

import (
	"strings"
	"time"
)

// Task is one trackable work item on the board.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskInput holds the values accepted when constructing a task.
type TaskInput struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueAt       *time.Time
}

// NewTask validates input, applies defaults, and stamps creation time.
func NewTask(in TaskInput, now time.Time) (Task, error) {
	in.ID = strings.TrimSpace(in.ID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	if in.ID == "" {
		return Task{}, ErrInvalidID
	}
	if in.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if !in.Status.Valid() {
		return Task{}, ErrInvalidStatus
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Task{}, ErrInvalidPriority
	}

	return Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueAt:       normalizeDueAt(in.DueAt),
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

// UpdateDetails replaces the editable non-status fields.
func (t *Task) UpdateDetails(title, description string, priority Priority, dueAt *time.Time, now time.Time) error {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return ErrInvalidTitle
	}
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	t.Title = title
	t.Description = description
	t.Priority = priority
	t.DueAt = normalizeDueAt(dueAt)
	t.UpdatedAt = now.UTC()
	return nil
}

// SetStatus changes the workflow state. Any status may follow any other.
func (t *Task) SetStatus(status Status, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	t.Status = status
	t.UpdatedAt = now.UTC()
	return nil
}

// Overdue reports whether the task is past its due date and not done.
func (t Task) Overdue(now time.Time) bool {
	if t.DueAt == nil || t.Status == StatusDone {
		return false
	}
	return t.DueAt.Before(now.UTC())
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	t.DueAt = normalizeDueAt(t.DueAt)
	return t
}

// normalizeDueAt copies the due date in UTC at second precision.
func normalizeDueAt(dueAt *time.Time) *time.Time {
	if dueAt == nil {
		return nil
	}
	ts := dueAt.UTC().Truncate(time.Second)
	return &ts
}
