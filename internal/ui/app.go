package ui

import (
	"context"
	"log"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/state"
	"github.com/five82/tally/internal/syncer"
	"github.com/five82/tally/internal/task"
)

// Syncer is the set of intents the UI issues. *syncer.Syncer satisfies it.
type Syncer interface {
	Load(ctx context.Context) error
	Create(ctx context.Context, draft task.Draft) error
	Update(ctx context.Context, t task.Task) error
	Toggle(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// Options configures the UI.
type Options struct {
	Context       context.Context
	Syncer        Syncer
	Store         *state.Store
	Notifications <-chan syncer.Notification
	ThemeName     string
	Filter        string
	PrefsPath     string
	LogPath       string
	Refresh       time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	syncer    Syncer
	store     *state.Store
	notes     <-chan syncer.Notification
	prefsPath string
	logPath   string
	refresh   time.Duration

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	// Data state
	snapshot state.Snapshot

	// List state
	filter      Filter
	selectedRow int
	selectedID  int64
	busy        map[int64]string

	// Overlays
	modal    Modal
	showHelp bool
	showLog  bool
	logView  logView

	toasts   []toast
	toastSeq int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.Refresh
	if refresh <= 0 {
		refresh = DefaultRefresh
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:       ctx,
		syncer:    opts.Syncer,
		store:     opts.Store,
		notes:     opts.Notifications,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		refresh:   refresh,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		filter:    ParseFilter(opts.Filter),
		busy:      make(map[int64]string),
		logView:   newLogView(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.syncer != nil {
		cmds = append(cmds, m.loadCmd())
	}
	if cmd := waitForNotification(m.notes); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.logView.resize(m.width, m.bodyHeight())
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refresh)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.syncSelection()
		return m, nil

	case opDoneMsg:
		if msg.id != 0 {
			delete(m.busy, msg.id)
		}
		if msg.err != nil {
			log.Printf("ui: action=%q id=%d err=%q", msg.label, msg.id, msg.err)
		}
		if m.store != nil {
			return m, fetchSnapshotCmd(m.store)
		}
		return m, nil

	case submitMsg:
		return m.handleSubmit(msg)

	case deleteConfirmedMsg:
		m.busy[msg.ID] = "deleting"
		return m, m.deleteCmd(msg.ID)

	case notificationMsg:
		expire := m.pushToast(syncer.Notification(msg))
		return m, tea.Batch(expire, waitForNotification(m.notes))

	case toastExpiredMsg:
		m.dropToast(msg.id)
		return m, nil

	case logLinesMsg:
		m.logView.setLines(msg, m.theme)
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		width := formWidth
		if _, ok := m.modal.(confirmDelete); ok {
			width = confirmWidth
		}
		width = min(width, max(m.width-4, 20))
		return m.renderModal(m.modal.View(m.theme, width), width)
	}
	return m.renderMain()
}

// handleKey routes keyboard input to the active overlay or the list.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		next, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = next
		}
		return m, cmd
	}

	if m.showLog {
		return m.handleLogKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.selectedRow = 0
		m.syncSelection()
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, m.loadCmd()

	case key.Matches(msg, m.keys.Log):
		m.showLog = true
		m.logView.resize(m.width, m.bodyHeight())
		return m, readLogCmd(m.logPath)

	case key.Matches(msg, m.keys.Add):
		m.modal = newTaskForm()
		return m, nil
	}

	return m.handleListKey(msg)
}

// handleListKey processes keys that act on the selected task.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		return m, nil
	}
	m.selectRow(m.selectedRow)
	selected := visible[m.selectedRow]

	switch {
	case key.Matches(msg, m.keys.Edit):
		m.modal = editTaskForm(selected)

	case key.Matches(msg, m.keys.Toggle):
		m.busy[selected.ID] = "saving"
		return m, m.toggleCmd(selected.ID)

	case key.Matches(msg, m.keys.Delete):
		m.modal = confirmDelete{id: selected.ID, title: selected.Title}

	case key.Matches(msg, m.keys.Down):
		m.selectRow(m.selectedRow + 1)

	case key.Matches(msg, m.keys.Up):
		m.selectRow(m.selectedRow - 1)

	case key.Matches(msg, m.keys.Top):
		m.selectRow(0)

	case key.Matches(msg, m.keys.Bottom):
		m.selectRow(len(visible) - 1)
	}
	return m, nil
}

// handleSubmit dispatches a saved form as a create or an update.
func (m Model) handleSubmit(msg submitMsg) (tea.Model, tea.Cmd) {
	if msg.ID == 0 {
		return m, m.createCmd(msg.Draft)
	}
	m.busy[msg.ID] = "saving"
	return m, m.updateCmd(task.Task{
		ID:          msg.ID,
		Title:       msg.Draft.Title,
		Description: msg.Draft.Description,
		Completed:   msg.Completed,
	})
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Filter: m.filter.String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		log.Printf("ui: save prefs path=%s err=%q", m.prefsPath, err)
	}
}

// bodyHeight is the number of rows left for the list or log panel.
func (m Model) bodyHeight() int {
	return max(m.height-headerRows-footerRows-len(m.toasts), 3)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// opDoneMsg reports a finished intent. id is zero for loads and creates.
type opDoneMsg struct {
	id    int64
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func (m Model) loadCmd() tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{label: "load", err: s.Load(ctx)}
	}
}

func (m Model) createCmd(draft task.Draft) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{label: syncer.LabelAdd, err: s.Create(ctx, draft)}
	}
}

func (m Model) updateCmd(t task.Task) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{id: t.ID, label: syncer.LabelUpdate, err: s.Update(ctx, t)}
	}
}

func (m Model) toggleCmd(id int64) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{id: id, label: syncer.LabelUpdate, err: s.Toggle(ctx, id)}
	}
}

func (m Model) deleteCmd(id int64) tea.Cmd {
	ctx, s := m.ctx, m.syncer
	return func() tea.Msg {
		return opDoneMsg{id: id, label: syncer.LabelDelete, err: s.Delete(ctx, id)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
