package ui

import (
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/syncer"
)

// Notifier is a syncer.Notifier that hands notifications to the UI.
type Notifier struct {
	ch chan syncer.Notification
}

// Ensure Notifier implements syncer.Notifier at compile time.
var _ syncer.Notifier = (*Notifier)(nil)

// NewNotifier creates a Notifier holding up to buffer pending notifications.
func NewNotifier(buffer int) *Notifier {
	return &Notifier{ch: make(chan syncer.Notification, max(buffer, 1))}
}

// Notify queues n without blocking; it is dropped when the queue is full.
func (n *Notifier) Notify(note syncer.Notification) {
	select {
	case n.ch <- note:
	default:
		log.Printf("ui: op=%s notification dropped title=%q", note.ID, note.Title)
	}
}

// C returns the channel the model reads from.
func (n *Notifier) C() <-chan syncer.Notification {
	return n.ch
}

type toast struct {
	id   int
	note syncer.Notification
}

type notificationMsg syncer.Notification

type toastExpiredMsg struct {
	id int
}

func waitForNotification(ch <-chan syncer.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		note, ok := <-ch
		if !ok {
			return nil
		}
		return notificationMsg(note)
	}
}

func expireToastCmd(id int) tea.Cmd {
	return tea.Tick(ToastDuration, func(_ time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}

// pushToast shows note and keeps at most maxToasts on screen.
func (m *Model) pushToast(note syncer.Notification) tea.Cmd {
	m.toastSeq++
	m.toasts = append(m.toasts, toast{id: m.toastSeq, note: note})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return expireToastCmd(m.toastSeq)
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

// renderToasts returns one line per visible toast, oldest first.
func (m Model) renderToasts() []string {
	if len(m.toasts) == 0 {
		return nil
	}
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var line string
		switch t.note.Kind {
		case syncer.KindFailure:
			line = bg.Render("✗ "+t.note.Title, styles.DangerText)
			if detail := strings.TrimSpace(t.note.Detail); detail != "" {
				line += bg.Render(" · ", styles.FaintText) + bg.Render(truncate(detail, m.width/2), styles.DangerText.Bold(false))
			}
		default:
			line = bg.Render("✓ "+t.note.Title, styles.SuccessText)
		}
		lines = append(lines, bg.FillLine(bg.Space()+line, m.width))
	}
	return lines
}
