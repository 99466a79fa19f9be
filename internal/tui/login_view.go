package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/kelsos/atom-tasks/internal/errors"
)

func (m *Model) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		return m.quitCmd()
	case "ctrl+t":
		m.toggleTheme()
		return nil
	case "enter":
		if m.login.Busy() {
			return nil
		}
		m.loginErr = ""
		return m.submitLogin(m.email.Value())
	}

	// the input is disabled while a lookup is in flight
	if m.login.Busy() {
		return nil
	}
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	return cmd
}

func (m *Model) submitLogin(email string) tea.Cmd {
	flow := m.login
	ctx := m.ctx
	return func() tea.Msg {
		_, err := flow.Submit(ctx, email)
		return loginDoneMsg{err: err}
	}
}

func (m *Model) handleLoginDone(err error) {
	if err == nil || apperrors.Is(err, apperrors.ErrBusy) {
		return
	}

	var opErr *apperrors.OperationError
	if apperrors.As(err, &opErr) && opErr.Kind == apperrors.KindValidation {
		m.loginErr = opErr.Message
	}
}

func (m *Model) loginView() string {
	var s strings.Builder

	s.WriteString(m.styles.header.Render("Atom Tasks"))
	s.WriteString("\n")
	s.WriteString(m.styles.subtle.Render("Sign in with your email. New emails can create an account."))
	s.WriteString("\n\n")
	s.WriteString(m.email.View())

	if m.login.Busy() {
		s.WriteString(" ")
		s.WriteString(m.spinner.View())
	}
	if m.loginErr != "" {
		s.WriteString("\n")
		s.WriteString(m.styles.errText.Render(m.loginErr))
	}

	s.WriteString("\n")
	s.WriteString(m.footer("enter: continue | ctrl+t: theme | esc: quit"))
	return s.String()
}
