package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	quit           key.Binding
	reload         key.Binding
	toggleHelp     key.Binding
	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	addTask        key.Binding
	taskInfo       key.Binding
	editTask       key.Binding
	deleteTask     key.Binding
	moveTaskLeft   key.Binding
	moveTaskRight  key.Binding
	reorderUp      key.Binding
	reorderDown    key.Binding
	search         key.Binding
	statusFilter   key.Binding
	priorityFilter key.Binding
	clearFilters   key.Binding
	copyID         key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		quit:           key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		reload:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reload")),
		toggleHelp:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "task up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "task down")),
		addTask:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		taskInfo:       key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i/enter", "task info")),
		editTask:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit task")),
		deleteTask:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		moveTaskLeft:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "move task left")),
		moveTaskRight:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "move task right")),
		reorderUp:      key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("K", "reorder up")),
		reorderDown:    key.NewBinding(key.WithKeys("J", "shift+down"), key.WithHelp("J", "reorder down")),
		search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		statusFilter:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		priorityFilter: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		clearFilters:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset filters")),
		copyID:         key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy task id")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.addTask, k.taskInfo, k.editTask, k.deleteTask, k.search, k.toggleHelp, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.addTask, k.taskInfo, k.editTask, k.deleteTask, k.copyID, k.toggleHelp, k.reload, k.quit},
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.moveTaskLeft, k.moveTaskRight, k.reorderUp, k.reorderDown},
		{k.search, k.statusFilter, k.priorityFilter, k.clearFilters},
	}
}
