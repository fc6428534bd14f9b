package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/denysvitali/share-viewer/pkg/theme"
)

// Styles holds the lipgloss styles for one theme.
type Styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	Folder      lipgloss.Style
	File        lipgloss.Style
	Size        lipgloss.Style
	Selected    lipgloss.Style
	Error       lipgloss.Style
	Placeholder lipgloss.Style
	Summary     lipgloss.Style
	Help        lipgloss.Style
}

type palette struct {
	fg, bg, accent, muted, folder, danger, highlight lipgloss.Color
}

var palettes = map[theme.Theme]palette{
	theme.Light: {
		fg:        lipgloss.Color("#1f2328"),
		bg:        lipgloss.Color("#eaeef2"),
		accent:    lipgloss.Color("#0969da"),
		muted:     lipgloss.Color("#6e7781"),
		folder:    lipgloss.Color("#9a6700"),
		danger:    lipgloss.Color("#cf222e"),
		highlight: lipgloss.Color("#ddf4ff"),
	},
	theme.Dark: {
		fg:        lipgloss.Color("#e6edf3"),
		bg:        lipgloss.Color("#30363d"),
		accent:    lipgloss.Color("#58a6ff"),
		muted:     lipgloss.Color("#8b949e"),
		folder:    lipgloss.Color("#d29922"),
		danger:    lipgloss.Color("#f85149"),
		highlight: lipgloss.Color("#1f6feb"),
	},
}

// NewStyles returns the styles for t. Unknown themes fall back to light.
func NewStyles(t theme.Theme) Styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg).
			Background(p.bg).
			Padding(0, 1),
		Label: lipgloss.NewStyle().
			Foreground(p.muted).
			Width(10),
		Folder: lipgloss.NewStyle().
			Foreground(p.folder).
			Bold(true),
		File: lipgloss.NewStyle().
			Foreground(p.fg),
		Size: lipgloss.NewStyle().
			Foreground(p.muted),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.accent).
			Background(p.highlight),
		Error: lipgloss.NewStyle().
			Foreground(p.danger).
			Bold(true),
		Placeholder: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
		Summary: lipgloss.NewStyle().
			Foreground(p.accent),
		Help: lipgloss.NewStyle().
			Foreground(p.muted),
	}
}
