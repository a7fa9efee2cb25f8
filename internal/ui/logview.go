package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/logtail"
)

// logLinesMsg carries the tail of the activity log.
type logLinesMsg struct {
	lines []string
	err   error
}

// logView shows the activity log with an optional substring filter.
type logView struct {
	viewport  viewport.Model
	search    textinput.Model
	searching bool
	entries   []logtail.Entry
	err       error
}

func newLogView() logView {
	ti := textinput.New()
	ti.Placeholder = "Filter log..."
	ti.CharLimit = 100
	ti.Prompt = "/"

	return logView{
		viewport: viewport.New(0, 0),
		search:   ti,
	}
}

func readLogCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logLinesMsg{}
		}
		lines, err := logtail.Read(path, LogTailLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

func (v *logView) resize(width, bodyHeight int) {
	v.viewport.Width = max(width-2, 0)
	v.viewport.Height = max(bodyHeight-3, 1)
	v.search.Width = max(width-6, 10)
}

// setLines replaces the entries and scrolls to the newest line.
func (v *logView) setLines(msg logLinesMsg, theme Theme) {
	v.err = msg.err
	v.entries = make([]logtail.Entry, 0, len(msg.lines))
	for _, line := range msg.lines {
		v.entries = append(v.entries, logtail.Parse(line))
	}
	v.refresh(theme)
	v.viewport.GotoBottom()
}

func (v *logView) visible() []logtail.Entry {
	return logtail.Filter(v.entries, v.search.Value())
}

func (v *logView) refresh(theme Theme) {
	styles := theme.Styles()
	entries := v.visible()
	if len(entries) == 0 {
		msg := "No activity yet"
		if v.search.Value() != "" {
			msg = "No entries match the filter"
		}
		v.viewport.SetContent(" " + styles.FaintText.Render(msg))
		return
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e, styles))
	}
	v.viewport.SetContent(strings.Join(lines, "\n"))
}

// formatEntry renders "15:04:05 source message key=value ...".
func formatEntry(e logtail.Entry, styles Styles) string {
	var b strings.Builder
	b.WriteString(" ")
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
		b.WriteString(" ")
	}
	if e.Source != "" {
		b.WriteString(styles.AccentText.Render(e.Source))
		b.WriteString(" ")
	}
	if len(e.Fields) == 0 && e.Message == "" {
		b.WriteString(styles.Text.Render(e.Raw))
		return b.String()
	}

	msgStyle := styles.Text
	if e.Failed() {
		msgStyle = styles.DangerText
	}
	if e.Message != "" {
		b.WriteString(msgStyle.Render(e.Message))
		b.WriteString(" ")
	}
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		valueStyle := styles.Text
		if k == "err" {
			valueStyle = styles.DangerText
		}
		b.WriteString(styles.MutedText.Render(k + "="))
		b.WriteString(valueStyle.Render(e.Fields[k]))
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

func (v logView) shortHelp(keys keyMap) []key.Binding {
	return []key.Binding{keys.Search, keys.Reload, keys.Escape}
}

// handleLogKey processes keyboard input while the log view is open.
func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.logView
	if v.searching {
		switch {
		case key.Matches(msg, m.keys.Escape):
			v.searching = false
			v.search.Blur()
			v.search.SetValue("")
		case key.Matches(msg, m.keys.Confirm):
			v.searching = false
			v.search.Blur()
		default:
			var cmd tea.Cmd
			v.search, cmd = v.search.Update(msg)
			v.refresh(m.theme)
			return m, cmd
		}
		v.refresh(m.theme)
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Log):
		m.showLog = false
	case key.Matches(msg, m.keys.Search):
		v.searching = true
		return m, v.search.Focus()
	case key.Matches(msg, m.keys.Reload):
		return m, readLogCmd(m.logPath)
	case key.Matches(msg, m.keys.Top):
		v.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		v.viewport.GotoBottom()
	default:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// renderLogView renders the activity log panel.
func (m Model) renderLogView() string {
	styles := m.theme.Styles()
	v := m.logView

	var status string
	switch {
	case v.searching:
		status = v.search.View()
	case v.err != nil:
		status = styles.DangerText.Render("read log: " + v.err.Error())
	case m.logPath == "":
		status = styles.FaintText.Render("Activity log is disabled")
	default:
		shown := len(v.visible())
		status = styles.FaintText.Render(fmt.Sprintf("%d %s", shown, plural(shown, "entry", "entries")))
		if q := v.search.Value(); q != "" {
			status += styles.MutedText.Render(" matching ") + styles.AccentText.Render(q)
		}
	}

	content := v.viewport.View() + "\n" + " " + status
	return m.renderBox("Activity log", content, m.width, m.bodyHeight(), true)
}
