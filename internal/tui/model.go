package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/taskify/internal/app"
	"github.com/hylla/taskify/internal/domain"
)

// Board represents the store operations consumed by the terminal board.
type Board interface {
	Board() domain.Board
	ListColumns(app.ColumnFilter) []domain.Column
	AddTask(app.AddTaskInput) (domain.Task, error)
	EditTask(string, app.EditTaskInput) (domain.Task, error)
	DeleteTask(string) error
	MoveTask(string, string, int) (domain.Board, error)
}

// inputMode describes input mode values.
type inputMode int

// modeNone and related constants define package defaults.
const (
	modeNone inputMode = iota
	modeAddTask
	modeEditTask
	modeSearch
	modeTaskInfo
	modeConfirmDelete
)

// task form field indexes.
const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldStatus
	taskFieldPriority
	taskFieldDue
)

var taskFormLabels = []string{"title", "description", "status", "priority", "due"}

// appendIndex asks the store to clamp the insert position to the end of the column.
const appendIndex = math.MaxInt

// errDueFormat reports an unparseable due date in the task form.
var errDueFormat = errors.New("due date must be YYYY-MM-DD or YYYY-MM-DDTHH:MM")

// Model represents model data used by this package.
type Model struct {
	svc Board

	keys keyMap
	help help.Model

	ready  bool
	width  int
	height int

	columns        []domain.Column
	selectedColumn int
	selectedTask   int
	filter         app.ColumnFilter

	mode   inputMode
	status string

	formInputs    []textinput.Model
	formFocus     int
	formStatus    domain.Status
	formPriority  domain.Priority
	editingTaskID string
	editingDue    string

	searchInput  textinput.Model
	searchBefore string

	infoTaskID         string
	pendingFocusTaskID string

	confirm       ConfirmConfig
	pendingDelete domain.Task
	confirmChoice int

	taskFields TaskFieldConfig
	markdown   *markdownRenderer
	now        func() time.Time
	copyText   func(string) error
}

// loadedMsg carries the filtered columns read from the board.
type loadedMsg struct {
	columns []domain.Column
}

// actionMsg carries the outcome of a mutation.
type actionMsg struct {
	err         error
	status      string
	focusTaskID string
}

// NewModel constructs a new value for this package.
func NewModel(svc Board, opts ...Option) Model {
	m := Model{
		svc:         svc,
		keys:        newKeyMap(),
		help:        help.New(),
		status:      "loading...",
		searchInput: newModalInput("/ ", "search title or description", "", 120),
		taskFields:  DefaultTaskFieldConfig(),
		confirm:     DefaultConfirmConfig(),
		markdown:    &markdownRenderer{},
		now:         time.Now,
		copyText:    systemClipboard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return m.loadData
}

// Update handles update.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case loadedMsg:
		m.ready = true
		m.columns = msg.columns
		m.clampSelections()
		if m.pendingFocusTaskID != "" {
			m.focusTaskByID(m.pendingFocusTaskID)
			m.pendingFocusTaskID = ""
		}
		if m.status == "" || m.status == "loading..." {
			m.status = "ready"
		}
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.status = "error: " + msg.err.Error()
			return m, nil
		}
		if m.mode == modeAddTask || m.mode == modeEditTask {
			m.closeTaskForm()
		}
		if msg.status != "" {
			m.status = msg.status
		}
		if msg.focusTaskID != "" {
			m.pendingFocusTaskID = msg.focusTaskID
		}
		return m, m.loadData

	case tea.KeyPressMsg:
		if m.mode != modeNone {
			return m.handleInputModeKey(msg)
		}
		return m.handleNormalModeKey(msg)

	default:
		return m, nil
	}
}

// loadData loads required data for the current operation.
func (m Model) loadData() tea.Msg {
	return loadedMsg{columns: m.svc.ListColumns(m.filter)}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		if m.help.ShowAll {
			m.status = "help"
		} else {
			m.status = "ready"
		}
		return m, nil
	case msg.String() == "esc":
		if m.help.ShowAll {
			m.help.ShowAll = false
			m.status = "ready"
			return m, nil
		}
		if m.filter.Active() {
			m.filter = app.ColumnFilter{}
			m.status = "filters cleared"
			return m, m.loadData
		}
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading..."
		return m, m.loadData
	case key.Matches(msg, m.keys.moveLeft):
		if m.selectedColumn > 0 {
			m.selectedColumn--
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.selectedColumn < len(m.columns)-1 {
			m.selectedColumn++
			m.selectedTask = 0
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		tasks := m.currentColumnTasks()
		if len(tasks) > 0 && m.selectedTask < len(tasks)-1 {
			m.selectedTask++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.selectedTask > 0 {
			m.selectedTask--
		}
		return m, nil
	case key.Matches(msg, m.keys.addTask):
		return m, m.startTaskForm(nil)
	case key.Matches(msg, m.keys.taskInfo):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		m.mode = modeTaskInfo
		m.infoTaskID = task.ID
		m.status = "task info"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.deleteTask):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if !m.confirm.Delete {
			return m, m.deleteTask(task)
		}
		m.mode = modeConfirmDelete
		m.pendingDelete = task
		m.confirmChoice = 1
		m.status = "confirm delete"
		return m, nil
	case key.Matches(msg, m.keys.moveTaskLeft):
		return m, m.moveSelectedTask(-1)
	case key.Matches(msg, m.keys.moveTaskRight):
		return m, m.moveSelectedTask(1)
	case key.Matches(msg, m.keys.reorderUp):
		return m, m.reorderSelectedTask(-1)
	case key.Matches(msg, m.keys.reorderDown):
		return m, m.reorderSelectedTask(1)
	case key.Matches(msg, m.keys.search):
		return m, m.startSearchMode()
	case key.Matches(msg, m.keys.statusFilter):
		m.filter.Status = nextStatusFilter(m.filter.Status)
		m.status = "status filter: " + filterLabel(string(m.filter.Status))
		return m, m.loadData
	case key.Matches(msg, m.keys.priorityFilter):
		m.filter.Priority = nextPriorityFilter(m.filter.Priority)
		m.status = "priority filter: " + filterLabel(string(m.filter.Priority))
		return m, m.loadData
	case key.Matches(msg, m.keys.clearFilters):
		m.filter = app.ColumnFilter{}
		m.status = "filters cleared"
		return m, m.loadData
	case key.Matches(msg, m.keys.copyID):
		task, ok := m.selectedTaskInCurrentColumn()
		if !ok {
			m.status = "no task selected"
			return m, nil
		}
		if err := m.copyText(task.ID); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied task id " + task.ID
		return m, nil
	default:
		return m, nil
	}
}

// handleInputModeKey routes key presses for modal states.
func (m Model) handleInputModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeTaskInfo:
		return m.handleTaskInfoKey(msg)
	case modeAddTask, modeEditTask:
		return m.handleTaskFormKey(msg)
	case modeConfirmDelete:
		return m.handleConfirmDeleteKey(msg)
	default:
		return m, nil
	}
}

// handleSearchKey applies the search text live while typing.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter.SearchText = m.searchBefore
		m.closeSearch()
		m.status = "search cancelled"
		return m, m.loadData
	case "enter":
		m.closeSearch()
		if m.filter.SearchText == "" {
			m.status = "search cleared"
		} else {
			m.status = "search: " + m.filter.SearchText
		}
		return m, m.loadData
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.filter.SearchText = strings.TrimSpace(m.searchInput.Value())
	m.columns = m.svc.ListColumns(m.filter)
	m.clampSelections()
	return m, cmd
}

// handleConfirmDeleteKey resolves the delete prompt. Choice 0 is confirm, 1 is cancel.
func (m Model) handleConfirmDeleteKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	confirmed := false
	switch msg.String() {
	case "esc", "n":
	case "h", "left", "l", "right", "tab":
		m.confirmChoice = 1 - m.confirmChoice
		return m, nil
	case "y":
		confirmed = true
	case "enter":
		confirmed = m.confirmChoice == 0
	default:
		return m, nil
	}
	task := m.pendingDelete
	m.mode = modeNone
	m.pendingDelete = domain.Task{}
	m.confirmChoice = 0
	if !confirmed {
		m.status = "cancelled"
		return m, nil
	}
	return m, m.deleteTask(task)
}

// handleTaskInfoKey handles keys while the task info overlay is open.
func (m Model) handleTaskInfoKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc", key.Matches(msg, m.keys.taskInfo), key.Matches(msg, m.keys.quit):
		m.mode = modeNone
		m.infoTaskID = ""
		m.status = "ready"
		return m, nil
	case key.Matches(msg, m.keys.editTask):
		task, ok := m.taskByID(m.infoTaskID)
		m.infoTaskID = ""
		if !ok {
			m.mode = modeNone
			m.status = "task not found"
			return m, nil
		}
		return m, m.startTaskForm(&task)
	case key.Matches(msg, m.keys.copyID):
		if err := m.copyText(m.infoTaskID); err != nil {
			m.status = "copy failed: " + err.Error()
			return m, nil
		}
		m.status = "copied task id " + m.infoTaskID
		return m, nil
	}
	return m, nil
}

// handleTaskFormKey edits the working draft. Nothing reaches the board until submit.
func (m Model) handleTaskFormKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		editing := m.mode == modeEditTask
		m.closeTaskForm()
		if editing {
			m.status = "changes discarded"
		} else {
			m.status = "cancelled"
		}
		return m, nil
	case "tab", "down":
		return m, m.focusTaskFormField((m.formFocus + 1) % len(m.formInputs))
	case "shift+tab", "up":
		return m, m.focusTaskFormField((m.formFocus - 1 + len(m.formInputs)) % len(m.formInputs))
	case "enter":
		return m, m.submitTaskForm()
	}
	if m.formFocus == taskFieldStatus || m.formFocus == taskFieldPriority {
		switch msg.String() {
		case "left", "h":
			m.cycleFormPicker(-1)
		case "right", "l", "space":
			m.cycleFormPicker(1)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.formInputs[m.formFocus], cmd = m.formInputs[m.formFocus].Update(msg)
	return m, cmd
}

// newModalInput constructs modal input.
func newModalInput(prompt, placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	if value != "" {
		in.SetValue(value)
	}
	return in
}

// startSearchMode starts search mode.
func (m *Model) startSearchMode() tea.Cmd {
	m.mode = modeSearch
	m.searchBefore = m.filter.SearchText
	m.searchInput.SetValue(m.filter.SearchText)
	m.searchInput.CursorEnd()
	m.status = "search"
	return m.searchInput.Focus()
}

func (m *Model) closeSearch() {
	m.mode = modeNone
	m.searchInput.Blur()
}

// startTaskForm opens the task form. A nil task starts a new task in the selected column.
func (m *Model) startTaskForm(task *domain.Task) tea.Cmd {
	m.formInputs = []textinput.Model{
		newModalInput("", "task title (required)", "", 120),
		newModalInput("", "short description", "", 500),
		newModalInput("", "", "", 0),
		newModalInput("", "", "", 0),
		newModalInput("", "YYYY-MM-DD[THH:MM] or -", "", 32),
	}
	m.formStatus = domain.StatusTodo
	if column, ok := m.currentColumn(); ok {
		m.formStatus = column.ID
	}
	m.formPriority = domain.PriorityMedium
	m.editingDue = ""
	if task != nil {
		m.formInputs[taskFieldTitle].SetValue(task.Title)
		m.formInputs[taskFieldDescription].SetValue(task.Description)
		m.editingDue = formatDueValue(task.DueAt)
		m.formInputs[taskFieldDue].SetValue(m.editingDue)
		m.formStatus = task.Status
		m.formPriority = task.Priority
		m.mode = modeEditTask
		m.editingTaskID = task.ID
		m.status = "edit task"
	} else {
		m.mode = modeAddTask
		m.editingTaskID = ""
		m.status = "new task"
	}
	m.syncFormPickers()
	return m.focusTaskFormField(taskFieldTitle)
}

// focusTaskFormField focuses task form field.
func (m *Model) focusTaskFormField(idx int) tea.Cmd {
	if len(m.formInputs) == 0 {
		return nil
	}
	idx = clamp(idx, 0, len(m.formInputs)-1)
	m.formFocus = idx
	for i := range m.formInputs {
		m.formInputs[i].Blur()
	}
	if idx == taskFieldStatus || idx == taskFieldPriority {
		return nil
	}
	return m.formInputs[idx].Focus()
}

// cycleFormPicker steps the focused status or priority picker.
func (m *Model) cycleFormPicker(delta int) {
	switch m.formFocus {
	case taskFieldStatus:
		m.formStatus = cycle(domain.Statuses(), m.formStatus, delta)
	case taskFieldPriority:
		m.formPriority = cycle(domain.Priorities(), m.formPriority, delta)
	}
	m.syncFormPickers()
}

func (m *Model) syncFormPickers() {
	m.formInputs[taskFieldStatus].SetValue(string(m.formStatus))
	m.formInputs[taskFieldPriority].SetValue(string(m.formPriority))
}

func (m *Model) closeTaskForm() {
	m.mode = modeNone
	m.formInputs = nil
	m.formFocus = 0
	m.editingTaskID = ""
	m.editingDue = ""
}

// submitTaskForm validates the draft and commits it through the board.
func (m *Model) submitTaskForm() tea.Cmd {
	title := strings.TrimSpace(m.formInputs[taskFieldTitle].Value())
	if title == "" {
		m.status = "title required"
		return nil
	}
	description := strings.TrimSpace(m.formInputs[taskFieldDescription].Value())
	dueText := strings.TrimSpace(m.formInputs[taskFieldDue].Value())
	dueAt, err := parseDueInput(dueText)
	if err != nil {
		m.status = err.Error()
		return nil
	}
	svc := m.svc
	status, priority := m.formStatus, m.formPriority
	if m.mode == modeAddTask {
		in := app.AddTaskInput{
			Title:       title,
			Description: description,
			Status:      status,
			Priority:    priority,
			DueAt:       dueAt,
		}
		return func() tea.Msg {
			task, err := svc.AddTask(in)
			if err != nil {
				return actionMsg{err: err}
			}
			return actionMsg{status: "created task", focusTaskID: task.ID}
		}
	}

	id := m.editingTaskID
	in := app.EditTaskInput{
		Title:       &title,
		Description: &description,
		Status:      &status,
		Priority:    &priority,
	}
	// The form shows due dates to the minute, so an untouched field keeps the stored value.
	switch {
	case dueText == m.editingDue:
	case dueAt != nil:
		in.DueAt = dueAt
	default:
		in.ClearDueAt = true
	}
	return func() tea.Msg {
		task, err := svc.EditTask(id, in)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "saved task", focusTaskID: task.ID}
	}
}

// deleteTask removes the task from the board.
func (m Model) deleteTask(task domain.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.DeleteTask(task.ID); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "deleted " + truncate(task.Title, 32)}
	}
}

// moveSelectedTask moves the selected task to the end of a neighbouring column.
func (m *Model) moveSelectedTask(delta int) tea.Cmd {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return nil
	}
	target := m.selectedColumn + delta
	if target < 0 || target >= len(m.columns) {
		m.status = "no column in that direction"
		return nil
	}
	dest := m.columns[target]
	svc := m.svc
	return func() tea.Msg {
		if _, err := svc.MoveTask(task.ID, string(dest.ID), appendIndex); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "moved to " + dest.Title, focusTaskID: task.ID}
	}
}

// reorderSelectedTask swaps the selected task with its visible neighbour. Positions are resolved
// against the unfiltered board so hidden tasks keep their order.
func (m *Model) reorderSelectedTask(delta int) tea.Cmd {
	task, ok := m.selectedTaskInCurrentColumn()
	if !ok {
		m.status = "no task selected"
		return nil
	}
	column := m.columns[m.selectedColumn]
	neighbour := m.selectedTask + delta
	if neighbour < 0 || neighbour >= len(column.Tasks) {
		m.status = "already at the edge"
		return nil
	}
	other := column.Tasks[neighbour]
	svc := m.svc
	return func() tea.Msg {
		_, otherIdx, found := svc.Board().Locate(other.ID)
		if !found {
			return actionMsg{err: fmt.Errorf("%w: %s", app.ErrNotFound, other.ID)}
		}
		if _, err := svc.MoveTask(task.ID, string(column.ID), otherIdx); err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "reordered", focusTaskID: task.ID}
	}
}

// currentColumn returns the selected column.
func (m Model) currentColumn() (domain.Column, bool) {
	if len(m.columns) == 0 {
		return domain.Column{}, false
	}
	return m.columns[clamp(m.selectedColumn, 0, len(m.columns)-1)], true
}

// currentColumnTasks returns the tasks in the selected column.
func (m Model) currentColumnTasks() []domain.Task {
	column, ok := m.currentColumn()
	if !ok {
		return nil
	}
	return column.Tasks
}

// selectedTaskInCurrentColumn returns the selected task.
func (m Model) selectedTaskInCurrentColumn() (domain.Task, bool) {
	tasks := m.currentColumnTasks()
	if len(tasks) == 0 {
		return domain.Task{}, false
	}
	return tasks[clamp(m.selectedTask, 0, len(tasks)-1)], true
}

// taskByID finds a visible task.
func (m Model) taskByID(id string) (domain.Task, bool) {
	for _, column := range m.columns {
		for _, task := range column.Tasks {
			if task.ID == id {
				return task, true
			}
		}
	}
	return domain.Task{}, false
}

// focusTaskByID moves the selection onto a task when it is visible.
func (m *Model) focusTaskByID(id string) bool {
	for colIdx, column := range m.columns {
		for taskIdx, task := range column.Tasks {
			if task.ID == id {
				m.selectedColumn = colIdx
				m.selectedTask = taskIdx
				return true
			}
		}
	}
	return false
}

// clampSelections keeps the selection inside the loaded columns.
func (m *Model) clampSelections() {
	if len(m.columns) == 0 {
		m.selectedColumn = 0
		m.selectedTask = 0
		return
	}
	m.selectedColumn = clamp(m.selectedColumn, 0, len(m.columns)-1)
	m.selectedTask = clamp(m.selectedTask, 0, len(m.columns[m.selectedColumn].Tasks)-1)
}

// nextStatusFilter cycles all -> todo -> in-progress -> done -> all.
func nextStatusFilter(current domain.Status) domain.Status {
	statuses := domain.Statuses()
	if current == "" {
		return statuses[0]
	}
	for i, status := range statuses {
		if status == current && i+1 < len(statuses) {
			return statuses[i+1]
		}
	}
	return ""
}

// nextPriorityFilter cycles all -> low -> medium -> high -> all.
func nextPriorityFilter(current domain.Priority) domain.Priority {
	priorities := domain.Priorities()
	if current == "" {
		return priorities[0]
	}
	for i, priority := range priorities {
		if priority == current && i+1 < len(priorities) {
			return priorities[i+1]
		}
	}
	return ""
}

func filterLabel(v string) string {
	if v == "" {
		return "all"
	}
	return v
}

// cycle steps through options with wraparound.
func cycle[T comparable](options []T, current T, delta int) T {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, option := range options {
		if option == current {
			idx = i
			break
		}
	}
	idx = ((idx+delta)%len(options) + len(options)) % len(options)
	return options[idx]
}

// parseDueInput parses the due field. Empty or "-" means no due date.
func parseDueInput(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "-" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			ts := parsed.UTC()
			return &ts, nil
		}
	}
	return nil, errDueFormat
}

// formatDueValue renders a due date for the form, dropping a midnight time.
func formatDueValue(dueAt *time.Time) string {
	if dueAt == nil {
		return ""
	}
	ts := dueAt.UTC()
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format("2006-01-02T15:04")
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// truncate truncates the requested operation.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
