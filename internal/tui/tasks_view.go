package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kelsos/atom-tasks/internal/flows"
	"github.com/kelsos/atom-tasks/internal/models"
	"github.com/kelsos/atom-tasks/internal/utils"
)

func (m *Model) handleTasksKey(msg tea.KeyMsg) tea.Cmd {
	flow := m.tasks
	if flow == nil {
		return nil
	}

	switch msg.String() {
	case "q":
		return m.quitCmd()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "t":
		m.toggleTheme()
	case "r":
		return m.runTaskOp(flow.Load)
	case "n":
		return m.runTaskOp(flow.Create)
	case "l":
		return func() tea.Msg { return taskOpDoneMsg{err: flow.Logout()} }
	case "e", " ", "x", "d":
		task, ok := m.selected()
		if !ok {
			return nil
		}
		switch msg.String() {
		case "e":
			return m.runTaskOp(func(ctx context.Context) error { return flow.Edit(ctx, task.ID) })
		case "d":
			return m.runTaskOp(func(ctx context.Context) error { return flow.Delete(ctx, task.ID) })
		default:
			return m.runTaskOp(func(ctx context.Context) error { return flow.Toggle(ctx, task.ID) })
		}
	}
	return nil
}

func (m *Model) runTaskOp(op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return taskOpDoneMsg{err: op(ctx)}
	}
}

func (m *Model) selected() (models.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return models.Task{}, false
	}
	return m.items[m.cursor], true
}

// refreshItems copies the flow's list, keeping the cursor on the same task
// when it is still there.
func (m *Model) refreshItems() {
	if m.tasks == nil {
		return
	}

	current, hadCurrent := m.selected()
	m.items = m.tasks.Tasks()

	if hadCurrent {
		for i, task := range m.items {
			if task.ID == current.ID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) tasksView() string {
	var s strings.Builder
	flow := m.tasks

	header := "Tasks"
	if flow != nil && flow.UserEmail() != "" {
		header = fmt.Sprintf("Tasks for %s", flow.UserEmail())
	}
	s.WriteString(m.styles.header.Render(header))
	if flow != nil && flow.Loading() {
		s.WriteString(" ")
		s.WriteString(m.spinner.View())
	}
	s.WriteString("\n")

	if len(m.items) == 0 {
		s.WriteString(m.styles.subtle.Render("No tasks yet. Press n to add one."))
		s.WriteString("\n")
	}

	width := m.width - 30
	if width < 20 {
		width = 20
	}

	for i, task := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		check := "[ ]"
		if task.Completed {
			check = "[x]"
		}
		if flow != nil && flow.Busy(flows.ControlToggle+task.ID.String()) {
			check = "[" + m.spinner.View() + "]"
		}

		title := truncate(task.Title, width)
		line := fmt.Sprintf("%s%s %s", cursor, check, title)
		switch {
		case i == m.cursor:
			line = m.styles.selected.Render(line)
		case task.Completed:
			line = m.styles.done.Render(line)
		}

		s.WriteString(line)
		s.WriteString("  ")
		s.WriteString(m.styles.subtle.Render(utils.FormatDate(task.CreatedAt)))
		s.WriteString("\n")

		if task.Description != "" && i != m.cursor {
			s.WriteString("      ")
			s.WriteString(m.styles.subtle.Render(truncate(firstLine(task.Description), width)))
			s.WriteString("\n")
		}
	}

	if task, ok := m.selected(); ok && task.Description != "" {
		s.WriteString("\n")
		s.WriteString(renderDescription(task.Description, m.width-4, m.deps.Theme.IsDark()))
		s.WriteString("\n")
	}

	s.WriteString(m.footer("n: new | e: edit | space: toggle | d: delete | r: reload | t: theme | l: logout | q: quit"))
	return s.String()
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
