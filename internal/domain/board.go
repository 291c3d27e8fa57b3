package domain

import "fmt"

// Board is the ordered set of columns, one per status.
type Board struct {
	Columns []Column `json:"columns"`
}

// NewBoard validates that every status owns exactly one column.
func NewBoard(columns []Column) (Board, error) {
	if len(columns) != len(validStatuses) {
		return Board{}, fmt.Errorf("%w: board needs %d columns, got %d", ErrInvalidStatus, len(validStatuses), len(columns))
	}
	seen := map[Status]struct{}{}
	out := make([]Column, 0, len(columns))
	for _, column := range columns {
		if !column.ID.Valid() {
			return Board{}, ErrInvalidStatus
		}
		if _, ok := seen[column.ID]; ok {
			return Board{}, fmt.Errorf("%w: duplicate column %q", ErrInvalidStatus, column.ID)
		}
		seen[column.ID] = struct{}{}
		out = append(out, column.Clone())
	}
	board := Board{Columns: out}
	if err := board.Validate(); err != nil {
		return Board{}, err
	}
	return board, nil
}

// ColumnIndex returns the index of the column for a status, or -1.
func (b Board) ColumnIndex(id Status) int {
	for idx, column := range b.Columns {
		if column.ID == id {
			return idx
		}
	}
	return -1
}

// Locate finds the column and position holding a task.
func (b Board) Locate(taskID string) (int, int, bool) {
	for colIdx, column := range b.Columns {
		if taskIdx := column.IndexOf(taskID); taskIdx >= 0 {
			return colIdx, taskIdx, true
		}
	}
	return -1, -1, false
}

// Task returns a copy of the task with the given id.
func (b Board) Task(taskID string) (Task, bool) {
	colIdx, taskIdx, ok := b.Locate(taskID)
	if !ok {
		return Task{}, false
	}
	return b.Columns[colIdx].Tasks[taskIdx].Clone(), true
}

// TaskCount returns the number of tasks across all columns.
func (b Board) TaskCount() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Tasks)
	}
	return total
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	columns := make([]Column, 0, len(b.Columns))
	for _, column := range b.Columns {
		columns = append(columns, column.Clone())
	}
	return Board{Columns: columns}
}

// Validate checks that every task sits in the column matching its status and appears once.
func (b Board) Validate() error {
	seen := map[string]Status{}
	for _, column := range b.Columns {
		for _, task := range column.Tasks {
			if task.Status != column.ID {
				return fmt.Errorf("%w: task %q has status %q but sits in %q", ErrBrokenPartition, task.ID, task.Status, column.ID)
			}
			if prev, ok := seen[task.ID]; ok {
				return fmt.Errorf("%w: task %q appears in %q and %q", ErrBrokenPartition, task.ID, prev, column.ID)
			}
			seen[task.ID] = column.ID
		}
	}
	return nil
}
