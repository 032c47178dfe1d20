package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/tunesmith/internal/repositories"
)

var (
	darkPalette  = NewPalette("#B4A1FF", "#04B575", "#FF5F87", "#FFA500", "#626262", "#89B4FA")
	lightPalette = NewPalette("#5A3FC0", "#067D4E", "#D7263D", "#B86E00", "#8A8A8A", "#1E66F5")
)

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title     lipgloss.Style
	ok        lipgloss.Style
	err       lipgloss.Style
	warn      lipgloss.Style
	help      lipgloss.Style
	accent    lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	panel     lipgloss.Style
	note      lipgloss.Style
	faintNote lipgloss.Style
}

func NewPalette(t, s, e, w, h, a string) *Palette {
	return &Palette{
		title:     NewBold(t).MarginBottom(1),
		ok:        NewBold(s),
		err:       NewBold(e),
		warn:      NewStyle(w),
		help:      NewEm(h),
		accent:    NewStyle(a),
		tab:       NewStyle(h).Padding(0, 1),
		activeTab: NewBold(a).Padding(0, 1).Underline(true),
		panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(h)).Padding(0, 1),
		note:      NewStyle(t),
		faintNote: NewStyle(h).Faint(true),
	}
}

// PaletteFor returns the stylesheet of a persisted theme name. Unknown names get the dark palette.
func PaletteFor(theme string) *Palette {
	if theme == repositories.ThemeLight {
		return lightPalette
	}
	return darkPalette
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
