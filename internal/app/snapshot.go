package app

import (
	"time"

	"github.com/hylla/taskify/internal/domain"
)

// SnapshotVersion identifies the export format.
const SnapshotVersion = "taskify.snapshot.v1"

// Snapshot is a versioned, JSON-tagged dump of the board.
type Snapshot struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Columns    []SnapshotColumn `json:"columns"`
}

// SnapshotColumn represents one exported column.
type SnapshotColumn struct {
	ID       domain.Status `json:"id"`
	Title    string        `json:"title"`
	Position int           `json:"position"`
	Tasks    []domain.Task `json:"tasks"`
}

// ExportSnapshot captures the current board.
func (s *Store) ExportSnapshot() Snapshot {
	s.mu.Lock()
	board := s.board.Clone()
	now := s.clock()
	s.mu.Unlock()

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: now.UTC(),
		Columns:    make([]SnapshotColumn, 0, len(board.Columns)),
	}
	for idx, column := range board.Columns {
		snap.Columns = append(snap.Columns, SnapshotColumn{
			ID:       column.ID,
			Title:    column.Title,
			Position: idx,
			Tasks:    column.Tasks,
		})
	}
	return snap
}

// TaskCount returns the number of exported tasks.
func (s Snapshot) TaskCount() int {
	total := 0
	for _, column := range s.Columns {
		total += len(column.Tasks)
	}
	return total
}
