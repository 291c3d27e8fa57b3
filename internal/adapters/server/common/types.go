// Package common provides transport-agnostic server contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/taskify/internal/domain"
)

// ErrInvalidRequest reports malformed or rejected transport input.
var ErrInvalidRequest = errors.New("invalid request")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// DueDateLayout is the short date form accepted alongside RFC3339 for due dates.
const DueDateLayout = "2006-01-02"

// ListColumnsRequest carries raw filter values from query strings or tool arguments.
type ListColumnsRequest struct {
	Search   string
	Status   string
	Priority string
}

// AddTaskRequest stores transport input for task creation.
type AddTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueAt       string `json:"due_at,omitempty"`
}

// EditTaskRequest stores transport input for partial task updates. Absent fields stay unchanged.
type EditTaskRequest struct {
	TaskID      string     `json:"-"`
	ID          *string    `json:"id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueAt       *string    `json:"due_at,omitempty"`
	ClearDueAt  bool       `json:"clear_due_at,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// MoveTaskRequest stores transport input for repositioning one task.
type MoveTaskRequest struct {
	TaskID   string `json:"-"`
	ColumnID string `json:"column_id"`
	Index    int    `json:"index"`
}

// DropRequest mirrors one drag-and-drop gesture.
type DropRequest struct {
	TaskID              string `json:"task_id"`
	SourceColumnID      string `json:"source_column_id"`
	SourceIndex         int    `json:"source_index"`
	DestinationColumnID string `json:"destination_column_id,omitempty"`
	DestinationIndex    int    `json:"destination_index"`
}

// DropResult reports the board after a drop and whether the drop changed anything.
type DropResult struct {
	Applied bool         `json:"applied"`
	Board   domain.Board `json:"board"`
}

// BoardService exposes board queries and mutations to transport adapters.
type BoardService interface {
	ListColumns(context.Context, ListColumnsRequest) ([]domain.Column, error)
	Board(context.Context) (domain.Board, error)
	GetTask(context.Context, string) (domain.Task, error)
	AddTask(context.Context, AddTaskRequest) (domain.Task, error)
	EditTask(context.Context, EditTaskRequest) (domain.Task, error)
	DeleteTask(context.Context, string) error
	MoveTask(context.Context, MoveTaskRequest) (domain.Board, error)
	ApplyDrop(context.Context, DropRequest) (DropResult, error)
}
