package app

import (
	"strings"

	"github.com/hylla/taskify/internal/domain"
)

// DropEvent describes one drag-and-drop gesture. An empty destination means the task was released
// outside any column.
type DropEvent struct {
	TaskID              string `json:"task_id"`
	SourceColumnID      string `json:"source_column_id"`
	SourceIndex         int    `json:"source_index"`
	DestinationColumnID string `json:"destination_column_id,omitempty"`
	DestinationIndex    int    `json:"destination_index"`
}

// Dropped reports whether the gesture ended over a column.
func (ev DropEvent) Dropped() bool {
	return strings.TrimSpace(ev.DestinationColumnID) != ""
}

// ApplyDrop translates a drop gesture into MoveTask. Only the task id and destination are read;
// the source fields describe the gesture as the client saw it. The bool result is false when the
// gesture had no destination or left the task where it already was.
func (s *Store) ApplyDrop(ev DropEvent) (domain.Board, bool, error) {
	if !ev.Dropped() {
		return s.Board(), false, nil
	}
	taskID := strings.TrimSpace(ev.TaskID)
	dest := domain.Status(strings.TrimSpace(ev.DestinationColumnID))

	s.mu.Lock()
	change, moved, err := s.moveTask(taskID, dest, ev.DestinationIndex)
	snapshot := s.board.Clone()
	s.mu.Unlock()

	if err != nil {
		return domain.Board{}, false, err
	}
	if moved {
		s.notify(change)
	}
	return snapshot, moved, nil
}
