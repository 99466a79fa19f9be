package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive client and blocks until the user quits
func Run(deps Deps) error {
	bridge := NewBridge()
	model := NewModel(deps, bridge)

	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge.attach(program)

	_, err := program.Run()

	bridge.attach(nil)
	bridge.shutdown()
	model.shutdown()

	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
