package ui

import (
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/task"
)

// Filter selects which tasks the list shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterOpen
	FilterDone
)

// ParseFilter maps a prefs value to a Filter, FilterAll when unknown.
func ParseFilter(value string) Filter {
	switch value {
	case prefs.FilterOpen:
		return FilterOpen
	case prefs.FilterDone:
		return FilterDone
	default:
		return FilterAll
	}
}

// String returns the prefs value for f.
func (f Filter) String() string {
	switch f {
	case FilterOpen:
		return prefs.FilterOpen
	case FilterDone:
		return prefs.FilterDone
	default:
		return prefs.FilterAll
	}
}

// Label is the header text for f.
func (f Filter) Label() string {
	switch f {
	case FilterOpen:
		return "Open"
	case FilterDone:
		return "Done"
	default:
		return "All"
	}
}

// Next cycles All, Open, Done.
func (f Filter) Next() Filter {
	switch f {
	case FilterAll:
		return FilterOpen
	case FilterOpen:
		return FilterDone
	default:
		return FilterAll
	}
}

func (f Filter) match(t task.Task) bool {
	switch f {
	case FilterOpen:
		return !t.Completed
	case FilterDone:
		return t.Completed
	default:
		return true
	}
}

// visibleTasks returns the snapshot tasks that pass the active filter.
func (m Model) visibleTasks() []task.Task {
	if m.filter == FilterAll {
		return m.snapshot.Tasks
	}
	out := make([]task.Task, 0, len(m.snapshot.Tasks))
	for _, t := range m.snapshot.Tasks {
		if m.filter.match(t) {
			out = append(out, t)
		}
	}
	return out
}

// syncSelection keeps the cursor on the same task across refreshes and
// clamps it when that task is gone.
func (m *Model) syncSelection() {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		m.selectedRow, m.selectedID = 0, 0
		return
	}
	if m.selectedID != 0 {
		if i := task.Index(visible, m.selectedID); i >= 0 {
			m.selectedRow = i
			return
		}
	}
	m.selectRow(m.selectedRow)
}

func (m *Model) selectRow(row int) {
	visible := m.visibleTasks()
	if len(visible) == 0 {
		m.selectedRow, m.selectedID = 0, 0
		return
	}
	m.selectedRow = min(max(row, 0), len(visible)-1)
	m.selectedID = visible[m.selectedRow].ID
}
