package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/tally/internal/task"
)

// renderHeader renders the status bar: logo, counts, filter, status and error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{bg.Render("tally", styles.Logo)}

	if m.snapshot.Loaded {
		open, done := task.Counts(m.snapshot.Tasks)
		parts = append(parts,
			m.headerCount(bg, styles, "Tasks:", len(m.snapshot.Tasks), styles.Text),
			m.headerCount(bg, styles, "Open:", open, styles.WarningText),
			m.headerCount(bg, styles, "Done:", done, styles.SuccessText),
		)
	}

	parts = append(parts,
		bg.Render("Filter:", styles.MutedText)+bg.Space()+bg.Render(m.filter.Label(), styles.AccentText),
	)

	if status := m.snapshot.Status; status != "" {
		parts = append(parts, bg.Render(status, styles.InfoText))
	} else if m.snapshot.Loading {
		parts = append(parts, bg.Render("Loading tasks...", styles.InfoText))
	}

	if err := m.snapshot.LastError; err != nil {
		parts = append(parts, bg.Render("● "+truncate(firstLine(err.Error()), max(m.width/3, 12)), styles.DangerText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		MaxWidth(m.width).
		Render(bg.Space() + strings.Join(parts, sep))
}

func (m Model) headerCount(bg BgStyle, styles Styles, label string, n int, value lipgloss.Style) string {
	return bg.Render(label, styles.MutedText) + bg.Space() + bg.Render(fmt.Sprintf("%d", n), value)
}

// renderFooter renders the command bar from the short help bindings.
func (m Model) renderFooter() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	bindings := m.keys.ShortHelp()
	if m.showLog {
		bindings = append(m.logView.shortHelp(m.keys), m.keys.Help, m.keys.Quit)
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.WarningText)+bg.Space()+bg.Render(h.Desc, styles.MutedText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Width(m.width).
		MaxWidth(m.width).
		Render(bg.Space() + strings.Join(parts, bg.Spaces(2)))
}
