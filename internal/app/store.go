package app

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hylla/taskify/internal/domain"
)

// IDGenerator returns unique identifiers for new tasks.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// ChangeOperation names one kind of board mutation.
type ChangeOperation string

// ChangeAdd and related constants enumerate board mutations.
const (
	ChangeAdd    ChangeOperation = "add"
	ChangeEdit   ChangeOperation = "edit"
	ChangeDelete ChangeOperation = "delete"
	ChangeMove   ChangeOperation = "move"
)

// Change describes one applied mutation.
type Change struct {
	Operation ChangeOperation
	TaskID    string
	From      domain.Status
	To        domain.Status
	Index     int
	At        time.Time
}

// Observer receives every applied mutation after the store lock is released.
type Observer func(Change)

// ColumnTemplate configures the title and display order of one status column.
type ColumnTemplate struct {
	ID    domain.Status
	Title string
}

// StoreConfig holds configuration for the store.
type StoreConfig struct {
	Columns  []ColumnTemplate
	Observer Observer
}

// Store is the single owner of the board. Every operation runs to completion under one lock,
// so callers observe either the whole change set or none of it.
type Store struct {
	mu       sync.Mutex
	board    domain.Board
	idGen    IDGenerator
	clock    Clock
	observer Observer
}

// NewStore constructs an empty board from the configured column templates.
func NewStore(idGen IDGenerator, clock Clock, cfg StoreConfig) (*Store, error) {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	templates := cfg.Columns
	if len(templates) == 0 {
		templates = DefaultColumnTemplates()
	}
	columns := make([]domain.Column, 0, len(templates))
	for _, tmpl := range templates {
		title := tmpl.Title
		if strings.TrimSpace(title) == "" {
			title = tmpl.ID.DefaultTitle()
		}
		column, err := domain.NewColumn(tmpl.ID, title)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", tmpl.ID, err)
		}
		columns = append(columns, column)
	}
	board, err := domain.NewBoard(columns)
	if err != nil {
		return nil, err
	}
	return &Store{
		board:    board,
		idGen:    idGen,
		clock:    clock,
		observer: cfg.Observer,
	}, nil
}

// DefaultColumnTemplates returns the todo, in-progress, done layout.
func DefaultColumnTemplates() []ColumnTemplate {
	out := make([]ColumnTemplate, 0, 3)
	for _, status := range domain.Statuses() {
		out = append(out, ColumnTemplate{ID: status, Title: status.DefaultTitle()})
	}
	return out
}

// AddTaskInput holds input values for add task operations.
type AddTaskInput struct {
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	DueAt       *time.Time
}

// EditTaskInput carries the fields to merge into an existing task. Nil fields are left untouched.
type EditTaskInput struct {
	ID          *string
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	DueAt       *time.Time
	ClearDueAt  bool
	CreatedAt   *time.Time
}

// Board returns a snapshot of the whole board.
func (s *Store) Board() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// GetTask returns one task by id.
func (s *Store) GetTask(id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.board.Task(strings.TrimSpace(id))
	if !ok {
		return domain.Task{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	return task, nil
}

// AddTask creates a task and appends it to the column matching its status.
func (s *Store) AddTask(in AddTaskInput) (domain.Task, error) {
	s.mu.Lock()
	now := s.clock()
	task, err := s.newTask(in, now)
	if err == nil {
		colIdx := s.board.ColumnIndex(task.Status)
		s.board.Columns[colIdx].Tasks = append(s.board.Columns[colIdx].Tasks, task)
	}
	var change Change
	if err == nil {
		change = Change{
			Operation: ChangeAdd,
			TaskID:    task.ID,
			To:        task.Status,
			Index:     len(s.board.Columns[s.board.ColumnIndex(task.Status)].Tasks) - 1,
			At:        now,
		}
	}
	s.mu.Unlock()

	if err != nil {
		return domain.Task{}, err
	}
	s.notify(change)
	return task.Clone(), nil
}

// newTask builds a validated task with a fresh unique id.
func (s *Store) newTask(in AddTaskInput, now time.Time) (domain.Task, error) {
	task, err := domain.NewTask(domain.TaskInput{
		ID:          s.idGen(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueAt:       in.DueAt,
	}, now)
	if err != nil {
		return domain.Task{}, err
	}
	if _, _, exists := s.board.Locate(task.ID); exists {
		return domain.Task{}, fmt.Errorf("%w: duplicate id %q", domain.ErrInvalidID, task.ID)
	}
	return task, nil
}

// EditTask merges fields into an existing task. A status change appends the task to the end of the
// destination column.
func (s *Store) EditTask(id string, in EditTaskInput) (domain.Task, error) {
	s.mu.Lock()
	task, change, err := s.editTask(strings.TrimSpace(id), in)
	s.mu.Unlock()

	if err != nil {
		return domain.Task{}, err
	}
	s.notify(change)
	return task.Clone(), nil
}

// editTask applies one edit while the lock is held.
func (s *Store) editTask(id string, in EditTaskInput) (domain.Task, Change, error) {
	colIdx, taskIdx, ok := s.board.Locate(id)
	if !ok {
		return domain.Task{}, Change{}, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	current := s.board.Columns[colIdx].Tasks[taskIdx]
	if in.ID != nil && strings.TrimSpace(*in.ID) != current.ID {
		return domain.Task{}, Change{}, fmt.Errorf("id: %w", domain.ErrImmutableField)
	}
	if in.CreatedAt != nil && !in.CreatedAt.Equal(current.CreatedAt) {
		return domain.Task{}, Change{}, fmt.Errorf("created_at: %w", domain.ErrImmutableField)
	}
	if in.DueAt != nil && in.ClearDueAt {
		return domain.Task{}, Change{}, fmt.Errorf("%w: due_at conflicts with clear_due_at", domain.ErrValidation)
	}

	next := current.Clone()
	title, description, priority, dueAt := next.Title, next.Description, next.Priority, next.DueAt
	if in.Title != nil {
		title = *in.Title
	}
	if in.Description != nil {
		description = *in.Description
	}
	if in.Priority != nil {
		priority = *in.Priority
	}
	switch {
	case in.ClearDueAt:
		dueAt = nil
	case in.DueAt != nil:
		dueAt = in.DueAt
	}
	now := s.clock()
	if err := next.UpdateDetails(title, description, priority, dueAt, now); err != nil {
		return domain.Task{}, Change{}, err
	}
	status := current.Status
	if in.Status != nil {
		status = *in.Status
	}
	if err := next.SetStatus(status, now); err != nil {
		return domain.Task{}, Change{}, err
	}

	change := Change{Operation: ChangeEdit, TaskID: id, From: current.Status, To: next.Status, Index: taskIdx, At: now}
	if next.Status == current.Status {
		s.board.Columns[colIdx].Tasks[taskIdx] = next
		return next, change, nil
	}
	destIdx := s.board.ColumnIndex(next.Status)
	s.board.Columns[colIdx].Tasks = slices.Delete(s.board.Columns[colIdx].Tasks, taskIdx, taskIdx+1)
	s.board.Columns[destIdx].Tasks = append(s.board.Columns[destIdx].Tasks, next)
	change.Index = len(s.board.Columns[destIdx].Tasks) - 1
	return next, change, nil
}

// DeleteTask removes a task from its column.
func (s *Store) DeleteTask(id string) error {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	colIdx, taskIdx, ok := s.board.Locate(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	status := s.board.Columns[colIdx].ID
	s.board.Columns[colIdx].Tasks = slices.Delete(s.board.Columns[colIdx].Tasks, taskIdx, taskIdx+1)
	now := s.clock()
	s.mu.Unlock()

	s.notify(Change{Operation: ChangeDelete, TaskID: id, From: status, Index: taskIdx, At: now})
	return nil
}

// MoveTask relocates a task to a column and position, clamping the position to the destination
// length. Moving to the current column and index leaves the board untouched.
func (s *Store) MoveTask(id, destinationColumnID string, destinationIndex int) (domain.Board, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	change, moved, err := s.moveTask(id, domain.Status(strings.TrimSpace(destinationColumnID)), destinationIndex)
	snapshot := s.board.Clone()
	s.mu.Unlock()

	if err != nil {
		return domain.Board{}, err
	}
	if moved {
		s.notify(change)
	}
	return snapshot, nil
}

// moveTask applies one move while the lock is held.
func (s *Store) moveTask(id string, dest domain.Status, destIndex int) (Change, bool, error) {
	srcCol, srcIdx, ok := s.board.Locate(id)
	if !ok {
		return Change{}, false, fmt.Errorf("task %q: %w", id, ErrNotFound)
	}
	destCol := s.board.ColumnIndex(dest)
	if destCol < 0 {
		return Change{}, false, fmt.Errorf("%w %q", ErrUnknownColumn, dest)
	}
	if destIndex < 0 {
		return Change{}, false, fmt.Errorf("index %d: %w", destIndex, domain.ErrInvalidPosition)
	}
	if srcCol == destCol && srcIdx == destIndex {
		return Change{}, false, nil
	}

	task := s.board.Columns[srcCol].Tasks[srcIdx]
	from := task.Status
	now := s.clock()
	if err := task.SetStatus(dest, now); err != nil {
		return Change{}, false, err
	}
	s.board.Columns[srcCol].Tasks = slices.Delete(s.board.Columns[srcCol].Tasks, srcIdx, srcIdx+1)
	insertAt := min(destIndex, len(s.board.Columns[destCol].Tasks))
	s.board.Columns[destCol].Tasks = slices.Insert(s.board.Columns[destCol].Tasks, insertAt, task)
	return Change{Operation: ChangeMove, TaskID: id, From: from, To: dest, Index: insertAt, At: now}, true, nil
}

// SeedTask pairs add input with how long ago the task was created.
type SeedTask struct {
	Input AddTaskInput
	Age   time.Duration
}

// Seed adds many tasks at once. Nothing is added unless every task is valid.
func (s *Store) Seed(seeds []SeedTask) ([]domain.Task, error) {
	s.mu.Lock()
	now := s.clock()
	staged := s.board.Clone()
	created := make([]domain.Task, 0, len(seeds))
	for idx, seed := range seeds {
		task, err := domain.NewTask(domain.TaskInput{
			ID:          s.idGen(),
			Title:       seed.Input.Title,
			Description: seed.Input.Description,
			Status:      seed.Input.Status,
			Priority:    seed.Input.Priority,
			DueAt:       seed.Input.DueAt,
		}, now.Add(-seed.Age))
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("seed task %d: %w", idx, err)
		}
		if _, _, exists := staged.Locate(task.ID); exists {
			s.mu.Unlock()
			return nil, fmt.Errorf("seed task %d: %w: duplicate id %q", idx, domain.ErrInvalidID, task.ID)
		}
		colIdx := staged.ColumnIndex(task.Status)
		staged.Columns[colIdx].Tasks = append(staged.Columns[colIdx].Tasks, task)
		created = append(created, task)
	}
	s.board = staged
	s.mu.Unlock()

	for _, task := range created {
		s.notify(Change{Operation: ChangeAdd, TaskID: task.ID, To: task.Status, At: now})
	}
	out := make([]domain.Task, 0, len(created))
	for _, task := range created {
		out = append(out, task.Clone())
	}
	return out, nil
}

// notify forwards one change to the configured observer.
func (s *Store) notify(change Change) {
	if s.observer == nil {
		return
	}
	s.observer(change)
}
