package tui

import (
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/kelsos/atom-tasks/internal/notify"
	"github.com/kelsos/atom-tasks/internal/theme"
)

type styles struct {
	header   lipgloss.Style
	subtle   lipgloss.Style
	selected lipgloss.Style
	done     lipgloss.Style
	errText  lipgloss.Style
	dialog   lipgloss.Style
	footer   lipgloss.Style
	toasts   map[notify.Level]lipgloss.Style
}

func newStyles(p theme.Palette) styles {
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)

	return styles{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Accent).
			MarginBottom(1),
		subtle:   lipgloss.NewStyle().Foreground(p.Muted),
		selected: lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		done:     lipgloss.NewStyle().Foreground(p.Muted).Strikethrough(true),
		errText:  lipgloss.NewStyle().Foreground(p.Error),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Accent).
			Padding(1, 2),
		footer: lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1),
		toasts: map[notify.Level]lipgloss.Style{
			notify.Info:    toast.Foreground(p.Background).Background(p.Accent),
			notify.Success: toast.Foreground(p.Background).Background(p.Success),
			notify.Error:   toast.Foreground(p.Background).Background(p.Error),
		},
	}
}

// truncate cuts s to max cells, counting wide runes and escapes correctly
func truncate(s string, max int) string {
	if max <= 3 || xansi.StringWidth(s) <= max {
		return s
	}
	return xansi.Truncate(s, max, "...")
}
