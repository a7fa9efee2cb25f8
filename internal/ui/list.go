package ui

import (
	"fmt"
	"strings"

	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/task"
)

// renderMain renders header, body, toasts and command bar.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.showLog {
		b.WriteString(m.renderLogView())
	} else {
		b.WriteString(m.renderList())
	}
	b.WriteString("\n")

	for _, line := range m.renderToasts() {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderList renders the task panel for the current phase.
func (m Model) renderList() string {
	height := m.bodyHeight()
	title := fmt.Sprintf("Tasks (%s)", m.filter.Label())

	var content string
	switch m.snapshot.Phase() {
	case state.PhaseLoading:
		content = m.renderSkeleton()
	case state.PhaseError:
		content = m.renderListError()
	case state.PhaseEmpty:
		content = m.renderEmpty("All tasks completed!", "Add a new task to get started.")
	default:
		content = m.renderRows(height - 2)
	}
	return m.renderBox(title, content, m.width, height, true)
}

func (m Model) renderSkeleton() string {
	styles := m.theme.Styles()
	width := max(m.width-10, 8)
	lines := make([]string, 0, skeletonRows*2)
	for i := range skeletonRows {
		bar := strings.Repeat("░", max(width-(i%3)*6, 4))
		lines = append(lines, " "+styles.FaintText.Render(bar), "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderListError() string {
	styles := m.theme.Styles()
	msg := "Unknown error"
	if err := m.snapshot.LastError; err != nil {
		msg = err.Error()
	}
	lines := []string{
		"",
		" " + styles.DangerText.Render("An Error Occurred"),
		" " + styles.Text.Render(msg),
		"",
		" " + styles.FaintText.Render("Press r to try again"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderEmpty(heading, hint string) string {
	styles := m.theme.Styles()
	return strings.Join([]string{
		"",
		" " + styles.SuccessText.Render(heading),
		" " + styles.MutedText.Render(hint),
	}, "\n")
}

// renderRows renders the visible tasks, scrolled so the selection fits in rows.
func (m Model) renderRows(rows int) string {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		switch m.filter {
		case FilterOpen:
			return m.renderEmpty("All tasks completed!", "Press f to show completed tasks.")
		default:
			return m.renderEmpty("Nothing completed yet.", "Press f to change the filter.")
		}
	}

	rows = max(rows, 1)
	start := 0
	if m.selectedRow >= rows {
		start = m.selectedRow - rows + 1
	}
	end := min(start+rows, len(visible))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.renderRow(visible[i], i == m.selectedRow))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(t task.Task, selected bool) string {
	styles := m.theme.Styles()
	innerWidth := max(m.width-2, 10)

	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	marker := "  "
	busy, isBusy := m.busy[t.ID]
	if isBusy {
		marker = "⟳ "
	}

	prefix := fmt.Sprintf(" %s%s #%-4d ", marker, check, t.ID)
	room := max(innerWidth-len([]rune(prefix))-1, 4)
	title := truncate(t.Title, room)
	desc := ""
	if d := firstLine(t.Description); d != "" && room-len([]rune(title)) > 8 {
		desc = "  " + truncate(d, room-len([]rune(title))-2)
	}
	if isBusy {
		desc = "  " + busy + "..."
	}

	if selected {
		return styles.Selected.Width(innerWidth).Render(prefix + title + desc)
	}

	titleStyle := styles.Text
	if t.Completed {
		titleStyle = styles.Done
	}
	checkStyle := styles.MutedText
	if t.Completed {
		checkStyle = styles.SuccessText
	}
	line := " " + styles.InfoText.Render(marker) + checkStyle.Render(check) +
		styles.FaintText.Render(fmt.Sprintf(" #%-4d ", t.ID)) + titleStyle.Render(title)
	if desc != "" {
		line += styles.FaintText.Render(desc)
	}
	return line
}
