package app

import (
	"strings"

	"github.com/hylla/taskify/internal/domain"
)

// ColumnFilter narrows the tasks returned by ListColumns. Zero values match everything.
type ColumnFilter struct {
	SearchText string
	Status     domain.Status
	Priority   domain.Priority
}

// ParseColumnFilter normalizes raw filter values. Empty status or priority values, and the literal
// "all", disable that criterion.
func ParseColumnFilter(search, status, priority string) (ColumnFilter, error) {
	filter := ColumnFilter{SearchText: strings.TrimSpace(search)}
	if raw := strings.TrimSpace(status); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := domain.ParseStatus(raw)
		if err != nil {
			return ColumnFilter{}, err
		}
		filter.Status = parsed
	}
	if raw := strings.TrimSpace(priority); raw != "" && !strings.EqualFold(raw, "all") {
		parsed, err := domain.ParsePriority(raw)
		if err != nil {
			return ColumnFilter{}, err
		}
		filter.Priority = parsed
	}
	return filter, nil
}

// Active reports whether any criterion is set.
func (f ColumnFilter) Active() bool {
	return f.SearchText != "" || f.Status != "" || f.Priority != ""
}

// Matches reports whether a task passes the search and priority criteria.
func (f ColumnFilter) Matches(task domain.Task) bool {
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	needle := strings.ToLower(strings.TrimSpace(f.SearchText))
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.Title), needle) ||
		strings.Contains(strings.ToLower(task.Description), needle)
}

// Apply returns filtered deep copies of columns. Columns outside the status criterion keep their
// place with no tasks.
func (f ColumnFilter) Apply(columns []domain.Column) []domain.Column {
	out := make([]domain.Column, 0, len(columns))
	for _, column := range columns {
		filtered := domain.Column{ID: column.ID, Title: column.Title, Tasks: []domain.Task{}}
		if f.Status == "" || f.Status == column.ID {
			for _, task := range column.Tasks {
				if f.Matches(task) {
					filtered.Tasks = append(filtered.Tasks, task.Clone())
				}
			}
		}
		out = append(out, filtered)
	}
	return out
}

// ListColumns returns every column filtered by f. The board is never modified.
func (s *Store) ListColumns(f ColumnFilter) []domain.Column {
	s.mu.Lock()
	defer s.mu.Unlock()
	return f.Apply(s.board.Columns)
}
