package domain

import "strings"

// Column is the ordered set of tasks sharing one status.
type Column struct {
	ID    Status `json:"id"`
	Title string `json:"title"`
	Tasks []Task `json:"tasks"`
}

// NewColumn constructs an empty column for a status.
func NewColumn(id Status, title string) (Column, error) {
	title = strings.TrimSpace(title)
	if !id.Valid() {
		return Column{}, ErrInvalidStatus
	}
	if title == "" {
		return Column{}, ErrInvalidName
	}
	return Column{
		ID:    id,
		Title: title,
		Tasks: []Task{},
	}, nil
}

// IndexOf returns the position of a task in the column, or -1.
func (c Column) IndexOf(taskID string) int {
	for idx, task := range c.Tasks {
		if task.ID == taskID {
			return idx
		}
	}
	return -1
}

// Clone deep-copies the column and its tasks.
func (c Column) Clone() Column {
	tasks := make([]Task, 0, len(c.Tasks))
	for _, task := range c.Tasks {
		tasks = append(tasks, task.Clone())
	}
	c.Tasks = tasks
	return c
}
