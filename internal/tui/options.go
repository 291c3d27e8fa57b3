package tui

import (
	"time"

	"github.com/atotto/clipboard"
)

// TaskFieldConfig selects the optional lines rendered on each card.
type TaskFieldConfig struct {
	ShowPriority    bool
	ShowDueDate     bool
	ShowDescription bool
}

type Option func(*Model)

func DefaultTaskFieldConfig() TaskFieldConfig {
	return TaskFieldConfig{
		ShowPriority:    true,
		ShowDueDate:     true,
		ShowDescription: false,
	}
}

func WithTaskFieldConfig(cfg TaskFieldConfig) Option {
	return func(m *Model) {
		m.taskFields = cfg
	}
}

// ConfirmConfig selects which actions ask before they run.
type ConfirmConfig struct {
	Delete bool
}

// DefaultConfirmConfig asks before deleting a task.
func DefaultConfirmConfig() ConfirmConfig {
	return ConfirmConfig{Delete: true}
}

func WithConfirmConfig(cfg ConfirmConfig) Option {
	return func(m *Model) {
		m.confirm = cfg
	}
}

// WithClock overrides the time source used for overdue highlighting.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithClipboard overrides the writer used by the copy task id action.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.copyText = write
		}
	}
}

// systemClipboard writes to the OS clipboard.
func systemClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// WithMarkdownStyle selects the glamour standard style for task descriptions.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.markdown = &markdownRenderer{style: style}
	}
}
