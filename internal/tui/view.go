package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/taskify/internal/domain"
)

const (
	defaultColumnWidth = 30
	minColumnWidth     = 20
)

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
)

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}
	v := tea.NewView(m.renderBoard())
	v.AltScreen = true
	return v
}

// renderBoard renders the full screen as a string.
func (m Model) renderBoard() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dimColor)

	header := titleStyle.Render("taskify")
	if summary := m.filterSummary(); summary != "" {
		header += statusStyle.Render("  " + summary)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderColumns()...)
	sections := []string{header, "", body}
	if m.mode == modeSearch {
		sections = append(sections, m.searchInput.View())
	}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}
	full := content + "\n" + helpLine

	overlay := m.renderModeOverlay(max(40, m.width-8))
	if m.help.ShowAll {
		overlay = m.renderHelpOverlay(max(40, m.width-8))
	}
	if overlay != "" {
		height := lipgloss.Height(full)
		if m.height > 0 {
			height = m.height
		}
		full = overlayOnContent(full, overlay, m.width, height)
	}
	return full
}

// renderColumns renders one bordered box per column.
func (m Model) renderColumns() []string {
	colWidth := m.columnWidth()
	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth)
	selected := base.BorderForeground(accentColor)
	colTitle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	selectedTaskStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(mutedColor)
	overdueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))

	now := m.now()
	textWidth := max(1, colWidth-6)
	views := make([]string, 0, len(m.columns))
	for colIdx, column := range m.columns {
		lines := []string{colTitle.Render(fmt.Sprintf("%s (%d)", column.Title, len(column.Tasks))), ""}
		if len(column.Tasks) == 0 {
			lines = append(lines, emptyStyle.Render("No tasks yet"))
		}
		for taskIdx, task := range column.Tasks {
			isSelected := colIdx == m.selectedColumn && taskIdx == m.selectedTask
			prefix := "  "
			if isSelected {
				prefix = "│ "
			}
			title := prefix + truncate(task.Title, textWidth)
			if isSelected {
				title = selectedTaskStyle.Render(title)
			}
			lines = append(lines, title)
			if m.taskFields.ShowDescription && strings.TrimSpace(task.Description) != "" {
				lines = append(lines, prefix+subStyle.Render(truncate(firstLine(task.Description), textWidth)))
			}
			if meta := m.taskMeta(task); meta != "" {
				style := subStyle
				if m.taskFields.ShowDueDate && task.Overdue(now) {
					style = overdueStyle
				}
				lines = append(lines, prefix+style.Render(truncate(meta, textWidth)))
			}
			if taskIdx < len(column.Tasks)-1 {
				lines = append(lines, "")
			}
		}
		content := strings.Join(lines, "\n")
		if colIdx == m.selectedColumn {
			views = append(views, selected.Render(content))
		} else {
			views = append(views, base.Render(content))
		}
	}
	return views
}

// taskMeta renders the secondary card line.
func (m Model) taskMeta(task domain.Task) string {
	parts := make([]string, 0, 2)
	if m.taskFields.ShowPriority {
		parts = append(parts, string(task.Priority))
	}
	if m.taskFields.ShowDueDate && task.DueAt != nil {
		due := "due " + task.DueAt.UTC().Format("Jan 2")
		if task.Overdue(m.now()) {
			due = "overdue " + task.DueAt.UTC().Format("Jan 2")
		}
		parts = append(parts, due)
	}
	return strings.Join(parts, " • ")
}

// columnWidth splits the terminal width across columns.
func (m Model) columnWidth() int {
	if m.width <= 0 || len(m.columns) == 0 {
		return defaultColumnWidth
	}
	return max(minColumnWidth, m.width/len(m.columns)-1)
}

// filterSummary describes the active filters for the header.
func (m Model) filterSummary() string {
	parts := make([]string, 0, 3)
	if m.filter.SearchText != "" {
		parts = append(parts, "search: "+m.filter.SearchText)
	}
	if m.filter.Status != "" {
		parts = append(parts, "status: "+string(m.filter.Status))
	}
	if m.filter.Priority != "" {
		parts = append(parts, "priority: "+string(m.filter.Priority))
	}
	return strings.Join(parts, "  ")
}

// renderModeOverlay renders the task form or task info box.
func (m Model) renderModeOverlay(maxWidth int) string {
	switch m.mode {
	case modeAddTask, modeEditTask:
		return m.renderTaskForm(maxWidth)
	case modeTaskInfo:
		return m.renderTaskInfo(maxWidth)
	case modeConfirmDelete:
		return m.renderConfirmDelete(maxWidth)
	default:
		return ""
	}
}

// renderConfirmDelete renders the delete prompt with the focused choice highlighted.
func (m Model) renderConfirmDelete(maxWidth int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	hintStyle := lipgloss.NewStyle().Foreground(dimColor)
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	idleStyle := lipgloss.NewStyle().Foreground(mutedColor)

	confirmStyle, cancelStyle := idleStyle, activeStyle
	if m.confirmChoice == 0 {
		confirmStyle, cancelStyle = activeStyle, idleStyle
	}
	title := strings.TrimSpace(m.pendingDelete.Title)
	if title == "" {
		title = "(untitled task)"
	}
	lines := []string{
		titleStyle.Render("Confirm Deletion"),
		"",
		"delete task: " + truncate(title, 48),
		"",
		confirmStyle.Render("[delete]") + "  " + cancelStyle.Render("[cancel]"),
		"",
		hintStyle.Render("enter apply • h/l switch • y delete • n/esc cancel"),
	}
	return m.overlayStyle(maxWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) overlayStyle(maxWidth int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(1, 2).
		Width(min(maxWidth, 72))
}

// renderTaskForm renders the working draft.
func (m Model) renderTaskForm(maxWidth int) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle := lipgloss.NewStyle().Foreground(mutedColor).Width(13)
	focusLabelStyle := labelStyle.Foreground(accentColor).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(dimColor)

	heading := "New task"
	if m.mode == modeEditTask {
		heading = "Edit task"
	}
	lines := []string{titleStyle.Render(heading), ""}
	for idx, in := range m.formInputs {
		label := labelStyle.Render(taskFormLabels[idx])
		if idx == m.formFocus {
			label = focusLabelStyle.Render(taskFormLabels[idx])
		}
		value := in.View()
		if idx == taskFieldStatus || idx == taskFieldPriority {
			value = "‹ " + in.Value() + " ›"
		}
		lines = append(lines, label+value)
	}
	lines = append(lines, "", hintStyle.Render("tab next field • ←/→ change option • enter save • esc cancel"))
	return m.overlayStyle(maxWidth).Render(strings.Join(lines, "\n"))
}

// renderTaskInfo renders task details with the description as markdown.
func (m Model) renderTaskInfo(maxWidth int) string {
	task, ok := m.taskByID(m.infoTaskID)
	if !ok {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	labelStyle := lipgloss.NewStyle().Foreground(mutedColor).Width(10)
	hintStyle := lipgloss.NewStyle().Foreground(dimColor)

	due := "-"
	if task.DueAt != nil {
		due = task.DueAt.UTC().Format("2006-01-02 15:04")
		if task.Overdue(m.now()) {
			due += " (overdue)"
		}
	}
	lines := []string{
		titleStyle.Render(task.Title),
		"",
		labelStyle.Render("status") + string(task.Status),
		labelStyle.Render("priority") + string(task.Priority),
		labelStyle.Render("due") + due,
		labelStyle.Render("created") + task.CreatedAt.UTC().Format("2006-01-02 15:04"),
		labelStyle.Render("updated") + task.UpdatedAt.UTC().Format("2006-01-02 15:04"),
		labelStyle.Render("id") + task.ID,
	}
	if m.markdown != nil {
		if rendered := m.markdown.render(task.Description, min(maxWidth, 72)-6); rendered != "" {
			lines = append(lines, "", rendered)
		}
	}
	lines = append(lines, "", hintStyle.Render("e edit • y copy id • esc close"))
	return m.overlayStyle(maxWidth).Render(strings.Join(lines, "\n"))
}

// renderHelpOverlay renders the expanded key help.
func (m Model) renderHelpOverlay(maxWidth int) string {
	helpBubble := m.help
	helpBubble.ShowAll = true
	helpBubble.SetWidth(min(maxWidth, 72) - 6)
	title := lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Keys")
	return m.overlayStyle(maxWidth).Render(title + "\n\n" + helpBubble.View(m.keys))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent overlays on content.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}
