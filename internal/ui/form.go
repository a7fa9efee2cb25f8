package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/task"
)

const (
	fieldTitle = iota
	fieldDescription
	fieldCount
)

// submitMsg carries a validated form. ID is zero for a new task.
type submitMsg struct {
	ID        int64
	Draft     task.Draft
	Completed bool
}

// taskForm edits the title and description of a new or existing task.
type taskForm struct {
	id        int64
	completed bool
	inputs    [fieldCount]textinput.Model
	focus     int
	err       string
}

func newTaskForm() *taskForm {
	title := textinput.New()
	title.Placeholder = "What needs doing?"
	title.CharLimit = 200
	title.Width = formWidth - 22

	desc := textinput.New()
	desc.Placeholder = "Optional details"
	desc.CharLimit = 1000
	desc.Width = formWidth - 22

	f := &taskForm{inputs: [fieldCount]textinput.Model{title, desc}}
	f.focusField(fieldTitle)
	return f
}

// editTaskForm pre-fills the form from t.
func editTaskForm(t task.Task) *taskForm {
	f := newTaskForm()
	f.id = t.ID
	f.completed = t.Completed
	f.inputs[fieldTitle].SetValue(t.Title)
	f.inputs[fieldDescription].SetValue(t.Description)
	return f
}

func (f *taskForm) focusField(i int) {
	f.focus = (i + fieldCount) % fieldCount
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f *taskForm) draft() task.Draft {
	return task.Draft{
		Title:       f.inputs[fieldTitle].Value(),
		Description: f.inputs[fieldDescription].Value(),
	}
}

// Update implements Modal.
func (f *taskForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	switch {
	case key.Matches(keyMsg, keys.Escape):
		return f, nil, true

	case key.Matches(keyMsg, keys.Confirm):
		d := f.draft()
		if err := d.Validate(); err != nil {
			f.err = validationMessage(err)
			f.focusField(fieldTitle)
			return f, nil, false
		}
		submit := submitMsg{ID: f.id, Draft: d, Completed: f.completed}
		return f, func() tea.Msg { return submit }, true

	case key.Matches(keyMsg, keys.NextField):
		f.focusField(f.focus + 1)
		return f, nil, false

	case key.Matches(keyMsg, keys.PrevField):
		f.focusField(f.focus - 1)
		return f, nil, false
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(keyMsg)
	if f.focus == fieldTitle {
		f.err = ""
	}
	return f, cmd, false
}

// View implements Modal.
func (f *taskForm) View(theme Theme, width int) string {
	styles := theme.Styles()
	var b strings.Builder

	heading := "New task"
	if f.id != 0 {
		heading = "Edit task"
	}
	b.WriteString(styles.Text.Bold(true).Render(heading))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", max(width-6, 10))))
	b.WriteString("\n\n")

	labels := [fieldCount]string{"Title:       ", "Description: "}
	for i, input := range f.inputs {
		label := styles.MutedText.Render(labels[i])
		if i == f.focus {
			label = styles.AccentText.Render(labels[i])
		}
		b.WriteString(label)
		b.WriteString(input.View())
		b.WriteString("\n")
		if i == fieldTitle && f.err != "" {
			b.WriteString(styles.DangerText.Render(f.err))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("Enter: Save  •  Tab: Next field  •  Esc: Cancel"))
	return b.String()
}

func validationMessage(err error) string {
	var verr *task.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
