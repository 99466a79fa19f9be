package tui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

type dialog struct {
	id uint64

	confirm *flows.ConfirmRequest

	form  *flows.TaskFormRequest
	title textinput.Model
	desc  textarea.Model
	focus int
	err   string
}

func newConfirmDialog(id uint64, req flows.ConfirmRequest) *dialog {
	return &dialog{id: id, confirm: &req}
}

func newFormDialog(id uint64, req flows.TaskFormRequest, width int) *dialog {
	title := textinput.New()
	title.Prompt = "Title: "
	title.Placeholder = "What needs doing?"
	title.CharLimit = maxTitleLen
	title.SetValue(req.Initial.Title)

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = maxDescriptionLen
	desc.ShowLineNumbers = false
	desc.SetHeight(4)
	desc.SetValue(req.Initial.Description)

	d := &dialog{id: id, form: &req, title: title, desc: desc}
	d.resize(width)
	return d
}

func (d *dialog) resize(width int) {
	if d.form == nil {
		return
	}
	w := width - 12
	if w < 20 {
		w = 20
	}
	d.title.Width = w - len(d.title.Prompt)
	d.desc.SetWidth(w)
}

func (d *dialog) focusCmd() tea.Cmd {
	if d.form == nil {
		return nil
	}
	if d.focus == 0 {
		d.desc.Blur()
		return d.title.Focus()
	}
	d.title.Blur()
	return d.desc.Focus()
}

// input returns the trimmed form values, or a message describing the first
// invalid field.
func (d *dialog) input() (models.TaskInput, string) {
	in := models.TaskInput{
		Title:       strings.TrimSpace(d.title.Value()),
		Description: strings.TrimSpace(d.desc.Value()),
	}
	switch {
	case in.Title == "":
		return in, "title is required"
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return in, "title must be at most 100 characters"
	case in.Description == "":
		return in, "description is required"
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return in, "description must be at most 500 characters"
	}
	return in, ""
}

// updateDialog routes keys to the front dialog and settles it on answer
func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	d := m.dialogs[0]

	if d.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			m.bridge.confirms.Resolve(d.id, true)
			return m.popDialog()
		case "n", "N", "esc":
			m.bridge.confirms.Resolve(d.id, false)
			return m.popDialog()
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		m.bridge.forms.Resolve(d.id, formAnswer{})
		return m.popDialog()
	case "tab", "shift+tab":
		d.focus = 1 - d.focus
		return d.focusCmd()
	case "ctrl+s":
		in, problem := d.input()
		if problem != "" {
			d.err = problem
			return nil
		}
		m.bridge.forms.Resolve(d.id, formAnswer{input: in, ok: true})
		return m.popDialog()
	}

	var cmd tea.Cmd
	if d.focus == 0 {
		if msg.String() == "enter" {
			d.focus = 1
			return d.focusCmd()
		}
		d.title, cmd = d.title.Update(msg)
	} else {
		d.desc, cmd = d.desc.Update(msg)
	}
	return cmd
}

func (m *Model) popDialog() tea.Cmd {
	m.dialogs = m.dialogs[1:]
	if len(m.dialogs) > 0 {
		return m.dialogs[0].focusCmd()
	}
	if m.view == viewLogin {
		return m.email.Focus()
	}
	return nil
}

func (d *dialog) view(st styles) string {
	var s strings.Builder

	if d.confirm != nil {
		s.WriteString(st.header.Render(d.confirm.Title))
		s.WriteString("\n")
		s.WriteString(d.confirm.Message)
		s.WriteString("\n\n")
		s.WriteString(st.subtle.Render("y: " + labelOr(d.confirm.ConfirmText, "Yes") + " | n: " + labelOr(d.confirm.CancelText, "No")))
		return st.dialog.Render(s.String())
	}

	s.WriteString(st.header.Render(d.form.Heading))
	s.WriteString("\n")
	s.WriteString(d.title.View())
	s.WriteString("\n\n")
	s.WriteString(d.desc.View())
	if d.err != "" {
		s.WriteString("\n")
		s.WriteString(st.errText.Render(d.err))
	}
	s.WriteString("\n\n")
	s.WriteString(st.subtle.Render("tab: next field | ctrl+s: save | esc: cancel"))
	return st.dialog.Render(s.String())
}

func labelOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
