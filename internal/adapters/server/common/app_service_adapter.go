package common

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hylla/taskify/internal/app"
	"github.com/hylla/taskify/internal/domain"
)

// AppServiceAdapter maps transport contracts onto app.Store operations.
type AppServiceAdapter struct {
	store *app.Store
}

// NewAppServiceAdapter builds one common adapter over an app.Store instance.
func NewAppServiceAdapter(store *app.Store) *AppServiceAdapter {
	return &AppServiceAdapter{store: store}
}

// ListColumns returns filtered columns.
func (a *AppServiceAdapter) ListColumns(ctx context.Context, in ListColumnsRequest) ([]domain.Column, error) {
	if err := a.ready(ctx); err != nil {
		return nil, err
	}
	filter, err := app.ParseColumnFilter(in.Search, in.Status, in.Priority)
	if err != nil {
		return nil, mapAppError("list columns", err)
	}
	return a.store.ListColumns(filter), nil
}

// Board returns the whole board.
func (a *AppServiceAdapter) Board(ctx context.Context) (domain.Board, error) {
	if err := a.ready(ctx); err != nil {
		return domain.Board{}, err
	}
	return a.store.Board(), nil
}

// GetTask returns one task by id.
func (a *AppServiceAdapter) GetTask(ctx context.Context, taskID string) (domain.Task, error) {
	if err := a.ready(ctx); err != nil {
		return domain.Task{}, err
	}
	task, err := a.store.GetTask(taskID)
	if err != nil {
		return domain.Task{}, mapAppError("get task", err)
	}
	return task, nil
}

// AddTask creates one task.
func (a *AppServiceAdapter) AddTask(ctx context.Context, in AddTaskRequest) (domain.Task, error) {
	if err := a.ready(ctx); err != nil {
		return domain.Task{}, err
	}
	status, err := parseOptionalStatus(in.Status)
	if err != nil {
		return domain.Task{}, mapAppError("add task", err)
	}
	priority, err := parseOptionalPriority(in.Priority)
	if err != nil {
		return domain.Task{}, mapAppError("add task", err)
	}
	dueAt, err := ParseDueAt(in.DueAt)
	if err != nil {
		return domain.Task{}, mapAppError("add task", err)
	}
	task, err := a.store.AddTask(app.AddTaskInput{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueAt:       dueAt,
	})
	if err != nil {
		return domain.Task{}, mapAppError("add task", err)
	}
	return task, nil
}

// EditTask merges the present fields into one task.
func (a *AppServiceAdapter) EditTask(ctx context.Context, in EditTaskRequest) (domain.Task, error) {
	if err := a.ready(ctx); err != nil {
		return domain.Task{}, err
	}
	edit := app.EditTaskInput{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		ClearDueAt:  in.ClearDueAt,
		CreatedAt:   in.CreatedAt,
	}
	if in.Status != nil {
		status, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return domain.Task{}, mapAppError("edit task", err)
		}
		edit.Status = &status
	}
	if in.Priority != nil {
		priority, err := domain.ParsePriority(*in.Priority)
		if err != nil {
			return domain.Task{}, mapAppError("edit task", err)
		}
		edit.Priority = &priority
	}
	if in.DueAt != nil {
		dueAt, err := ParseDueAt(*in.DueAt)
		if err != nil {
			return domain.Task{}, mapAppError("edit task", err)
		}
		if dueAt == nil {
			edit.ClearDueAt = true
		}
		edit.DueAt = dueAt
	}
	task, err := a.store.EditTask(in.TaskID, edit)
	if err != nil {
		return domain.Task{}, mapAppError("edit task", err)
	}
	return task, nil
}

// DeleteTask removes one task.
func (a *AppServiceAdapter) DeleteTask(ctx context.Context, taskID string) error {
	if err := a.ready(ctx); err != nil {
		return err
	}
	if err := a.store.DeleteTask(taskID); err != nil {
		return mapAppError("delete task", err)
	}
	return nil
}

// MoveTask repositions one task and returns the resulting board.
func (a *AppServiceAdapter) MoveTask(ctx context.Context, in MoveTaskRequest) (domain.Board, error) {
	if err := a.ready(ctx); err != nil {
		return domain.Board{}, err
	}
	board, err := a.store.MoveTask(in.TaskID, in.ColumnID, in.Index)
	if err != nil {
		return domain.Board{}, mapAppError("move task", err)
	}
	return board, nil
}

// ApplyDrop forwards one drag-and-drop gesture.
func (a *AppServiceAdapter) ApplyDrop(ctx context.Context, in DropRequest) (DropResult, error) {
	if err := a.ready(ctx); err != nil {
		return DropResult{}, err
	}
	board, applied, err := a.store.ApplyDrop(app.DropEvent(in))
	if err != nil {
		return DropResult{}, mapAppError("apply drop", err)
	}
	return DropResult{Applied: applied, Board: board}, nil
}

// ready rejects calls on an unconfigured adapter or a canceled request.
func (a *AppServiceAdapter) ready(ctx context.Context) error {
	if a == nil || a.store == nil {
		return fmt.Errorf("app service adapter is not configured: %w", ErrInvalidRequest)
	}
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("request canceled: %w", err)
	}
	return nil
}

// ParseDueAt accepts RFC3339 timestamps or YYYY-MM-DD dates. Empty input means no due date.
func ParseDueAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	ts, err := time.Parse(DueDateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: due_at %q must be RFC3339 or %s", domain.ErrValidation, raw, DueDateLayout)
	}
	return &ts, nil
}

// parseOptionalStatus parses a status, leaving empty input for the store default.
func parseOptionalStatus(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParseStatus(raw)
}

// parseOptionalPriority parses a priority, leaving empty input for the store default.
func parseOptionalPriority(raw string) (domain.Priority, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	return domain.ParsePriority(raw)
}

// mapAppError maps app and domain errors into transport-visible sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrValidation):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
