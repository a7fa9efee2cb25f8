package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// deleteConfirmedMsg is sent when the user accepts the delete dialog.
type deleteConfirmedMsg struct {
	ID int64
}

// confirmDelete asks before a task is removed.
type confirmDelete struct {
	id    int64
	title string
}

// Update implements Modal.
func (c confirmDelete) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Yes):
		id := c.id
		return c, func() tea.Msg { return deleteConfirmedMsg{ID: id} }, true
	case key.Matches(keyMsg, keys.No):
		return c, nil, true
	}
	return c, nil, false
}

// View implements Modal.
func (c confirmDelete) View(theme Theme, width int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Delete this task?"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Render(truncate(c.title, max(width-6, 8))))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("y: Delete  •  n: Cancel"))
	return b.String()
}
