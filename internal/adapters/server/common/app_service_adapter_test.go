package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hylla/taskify/internal/app"
	"github.com/hylla/taskify/internal/domain"
)

// newAdapterForTest builds an adapter over a store with deterministic ids and clock.
func newAdapterForTest(t *testing.T) *AppServiceAdapter {
	t.Helper()
	seq := 0
	store, err := app.NewStore(func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}, func() time.Time {
		return time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)
	}, app.StoreConfig{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return NewAppServiceAdapter(store)
}

// TestAppServiceAdapterAddParsesFields verifies string inputs become domain values.
func TestAppServiceAdapterAddParsesFields(t *testing.T) {
	adapter := newAdapterForTest(t)
	task, err := adapter.AddTask(context.Background(), AddTaskRequest{
		Title:    "Write tests",
		Status:   "In-Progress",
		Priority: "HIGH",
		DueAt:    "2026-03-01",
	})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}
	if task.Status != domain.StatusInProgress || task.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected task %#v", task)
	}
	if task.DueAt == nil || !task.DueAt.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected due date %v", task.DueAt)
	}
}

// TestAppServiceAdapterErrorMapping verifies app errors become transport sentinels.
func TestAppServiceAdapterErrorMapping(t *testing.T) {
	adapter := newAdapterForTest(t)
	ctx := context.Background()

	if _, err := adapter.AddTask(ctx, AddTaskRequest{Title: " "}); !errors.Is(err, ErrInvalidRequest) || !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("AddTask(empty title) error = %v", err)
	}
	if _, err := adapter.AddTask(ctx, AddTaskRequest{Title: "x", DueAt: "next week"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("AddTask(bad due) error = %v", err)
	}
	if _, err := adapter.GetTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTask(missing) error = %v", err)
	}
	if err := adapter.DeleteTask(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTask(missing) error = %v", err)
	}
	if _, err := adapter.ListColumns(ctx, ListColumnsRequest{Priority: "urgent"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("ListColumns(bad priority) error = %v", err)
	}
	if _, err := adapter.MoveTask(ctx, MoveTaskRequest{TaskID: "missing", ColumnID: "done"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("MoveTask(missing) error = %v", err)
	}
}

// TestAppServiceAdapterEditTask verifies partial edits, due clearing, and immutability.
func TestAppServiceAdapterEditTask(t *testing.T) {
	adapter := newAdapterForTest(t)
	ctx := context.Background()
	task, err := adapter.AddTask(ctx, AddTaskRequest{Title: "Draft", DueAt: "2026-03-01T10:00:00Z"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	status := "done"
	empty := ""
	edited, err := adapter.EditTask(ctx, EditTaskRequest{TaskID: task.ID, Status: &status, DueAt: &empty})
	if err != nil {
		t.Fatalf("EditTask() error = %v", err)
	}
	if edited.Status != domain.StatusDone || edited.DueAt != nil || edited.Title != "Draft" {
		t.Fatalf("unexpected edited task %#v", edited)
	}

	otherID := "other"
	if _, err := adapter.EditTask(ctx, EditTaskRequest{TaskID: task.ID, ID: &otherID}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("EditTask(id change) error = %v", err)
	}
	bad := "someday"
	if _, err := adapter.EditTask(ctx, EditTaskRequest{TaskID: task.ID, Priority: &bad}); !errors.Is(err, domain.ErrInvalidPriority) {
		t.Fatalf("EditTask(bad priority) error = %v", err)
	}
}

// TestAppServiceAdapterApplyDrop verifies ignored and applied drops.
func TestAppServiceAdapterApplyDrop(t *testing.T) {
	adapter := newAdapterForTest(t)
	ctx := context.Background()
	task, err := adapter.AddTask(ctx, AddTaskRequest{Title: "Drag me"})
	if err != nil {
		t.Fatalf("AddTask() error = %v", err)
	}

	result, err := adapter.ApplyDrop(ctx, DropRequest{TaskID: task.ID, SourceColumnID: "todo"})
	if err != nil || result.Applied {
		t.Fatalf("ApplyDrop(no destination) = %#v, %v", result, err)
	}
	result, err = adapter.ApplyDrop(ctx, DropRequest{TaskID: task.ID, SourceColumnID: "todo", DestinationColumnID: "in-progress"})
	if err != nil || !result.Applied {
		t.Fatalf("ApplyDrop() = %#v, %v", result, err)
	}
	if len(result.Board.Columns[1].Tasks) != 1 {
		t.Fatalf("expected task in in-progress column, got %#v", result.Board.Columns[1])
	}
}

// TestAppServiceAdapterCanceledContext verifies canceled requests never reach the store.
func TestAppServiceAdapterCanceledContext(t *testing.T) {
	adapter := newAdapterForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := adapter.AddTask(ctx, AddTaskRequest{Title: "late"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("AddTask(canceled) error = %v", err)
	}
	board, err := adapter.Board(context.Background())
	if err != nil {
		t.Fatalf("Board() error = %v", err)
	}
	if board.TaskCount() != 0 {
		t.Fatalf("TaskCount() = %d, want 0", board.TaskCount())
	}

	var nilAdapter *AppServiceAdapter
	if _, err := nilAdapter.Board(context.Background()); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("nil adapter error = %v", err)
	}
}

// TestParseDueAt verifies accepted due-date layouts.
func TestParseDueAt(t *testing.T) {
	cases := []struct {
		raw     string
		want    *time.Time
		wantErr bool
	}{
		{raw: "", want: nil},
		{raw: "2026-03-01", want: ptrTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))},
		{raw: "2026-03-01T08:30:00+02:00", want: ptrTime(time.Date(2026, 3, 1, 6, 30, 0, 0, time.UTC))},
		{raw: "tomorrow", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseDueAt(tc.raw)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("ParseDueAt() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDueAt() error = %v", err)
			}
			if (got == nil) != (tc.want == nil) || (got != nil && !got.Equal(*tc.want)) {
				t.Fatalf("ParseDueAt() = %v, want %v", got, tc.want)
			}
		})
	}
}

func ptrTime(ts time.Time) *time.Time {
	return &ts
}
