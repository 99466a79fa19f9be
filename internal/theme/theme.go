// Package theme keeps the light/dark preference and the palette derived from it.
package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/kelsos/atom-tasks/internal/logger"
	"github.com/kelsos/atom-tasks/internal/storage"
)

// StorageKey holds "true" for dark and "false" for light
const StorageKey = "darkTheme"

const (
	DarkMarker     = "dark-theme"
	DarkColorHint  = "#1a120a"
	LightColorHint = "#fff8f5"
)

// Palette is the set of colors applied for a theme
type Palette struct {
	Marker     string
	ColorHint  lipgloss.Color
	Background lipgloss.Color
	Foreground lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

var (
	darkPalette = Palette{
		Marker:     DarkMarker,
		ColorHint:  DarkColorHint,
		Background: DarkColorHint,
		Foreground: "#f5e6dc",
		Accent:     "#ffb68a",
		Muted:      "#8d7b70",
		Success:    "#8fd19e",
		Error:      "#ff8a80",
	}
	lightPalette = Palette{
		ColorHint:  LightColorHint,
		Background: LightColorHint,
		Foreground: "#2b1d14",
		Accent:     "#9a4a12",
		Muted:      "#7a685c",
		Success:    "#2e7d32",
		Error:      "#c62828",
	}
)

// SystemPreference reports whether the environment prefers a dark theme
type SystemPreference func() bool

// DetectTerminal asks the terminal for its background color
func DetectTerminal() bool {
	return termenv.HasDarkBackground()
}

// Manager is the process-wide theme state
type Manager struct {
	local storage.Local

	mu        sync.Mutex
	dark      bool
	listeners map[int]func(dark bool)
	nextID    int
}

// NewManager loads the stored preference, falling back to system when none
// is stored. system may be nil.
func NewManager(local storage.Local, system SystemPreference) *Manager {
	m := &Manager{local: local, listeners: make(map[int]func(bool))}
	m.dark = m.initial(system)
	m.apply()
	return m
}

func (m *Manager) initial(system SystemPreference) bool {
	if m.local != nil {
		stored, ok, err := m.local.GetItem(StorageKey)
		if err != nil {
			logger.Warn("Failed to read theme preference: %v", err)
		} else if ok && stored != "" {
			return stored == "true"
		}
	}
	if system == nil {
		return false
	}
	return system()
}

func (m *Manager) IsDark() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dark
}

// Toggle flips the theme, persists it and notifies listeners
func (m *Manager) Toggle() (bool, error) {
	m.mu.Lock()
	m.dark = !m.dark
	dark := m.dark
	fns := make([]func(bool), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	var err error
	if m.local != nil {
		value := "false"
		if dark {
			value = "true"
		}
		err = m.local.SetItem(StorageKey, value)
		if err != nil {
			logger.Error("Failed to store theme preference: %v", err)
		}
	}

	m.apply()
	for _, fn := range fns {
		fn(dark)
	}
	return dark, err
}

// Subscribe registers fn for theme changes; the returned function
// unregisters it.
func (m *Manager) Subscribe(fn func(dark bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// Palette returns the palette of the current theme
func (m *Manager) Palette() Palette {
	return PaletteFor(m.IsDark())
}

func PaletteFor(dark bool) Palette {
	if dark {
		return darkPalette
	}
	return lightPalette
}

// apply makes lipgloss adaptive colors follow the chosen theme
func (m *Manager) apply() {
	lipgloss.SetHasDarkBackground(m.IsDark())
}
