// Package ui provides the terminal user interface for tally.
//
// # Architecture Overview
//
// The interface is a Bubble Tea program. Model never mutates tasks itself:
// every intent (add, edit, toggle, delete, reload) runs as a tea.Cmd that
// calls the Syncer, and the list is redrawn from state.Store snapshots taken
// on a short tick and after each finished intent.
//
// # Package Structure
//
//   - app.go: Model, Options, message routing and the intent commands
//   - filter.go: All/Open/Done filter and selection tracking
//   - header.go: status bar and command bar
//   - list.go: task panel for the loading, error, empty and ready phases
//   - form.go, confirm.go, modal.go: add/edit form and delete dialog
//   - toast.go: channel-backed Notifier and toast rendering
//   - logview.go: activity log viewer with substring filter
//   - theme.go, style_helpers.go: palettes and Lipgloss helpers
//
// # Event Flow
//
//  1. Init schedules the refresh tick, the first load and the notification listener
//  2. Keys open a modal or issue an intent command; the row is marked busy
//  3. The command returns opDoneMsg, the busy marker clears and a snapshot is taken
//  4. Notifications from the syncer arrive as toasts that expire after ToastDuration
//
// # Key Bindings
//
//   - a: Add task
//   - e/enter: Edit selected task
//   - space/x: Toggle completion
//   - d: Delete selected task (asks first)
//   - f: Cycle filter (All, Open, Done)
//   - r: Reload from the backend
//   - L: Activity log, / filters it
//   - T: Cycle theme
//   - h/?: Help
//   - q/ctrl+c: Quit
package ui
