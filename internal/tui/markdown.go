package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

var (
	mdMu sync.Mutex
	// keyed by style and wrap width; a fixed standard style avoids the
	// terminal queries of auto style
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderDescription renders a task description as markdown. Rendering
// failures fall back to the raw text.
func renderDescription(md string, width int, dark bool) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := glamourstyles.LightStyle
	if dark {
		style = glamourstyles.DarkStyle
	}
	key := fmt.Sprintf("%s:%d", style, width)

	mdMu.Lock()
	defer mdMu.Unlock()

	r := mdRenderers[key]
	if r == nil {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = r
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
