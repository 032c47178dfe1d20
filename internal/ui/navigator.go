package ui

import (
	"fmt"
	"strings"
)

// Section is a named panel of the TUI.
type Section string

const (
	SectionDashboard Section = "dashboard"
	SectionHistory   Section = "history"
	SectionFavorites Section = "favorites"
	SectionSettings  Section = "settings"
)

// Sections lists the panels in tab order.
var Sections = []Section{SectionDashboard, SectionHistory, SectionFavorites, SectionSettings}

// PanelID is the identifier of the panel that displays s.
func (s Section) PanelID() string { return string(s) + "-section" }

// Title is the tab label.
func (s Section) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Navigator keeps exactly one section visible.
type Navigator struct {
	active int
}

// NewNavigator starts on the dashboard.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Show makes id the only visible section and reports whether id was known. Unknown ids change nothing.
func (n *Navigator) Show(id string) bool {
	for i, s := range Sections {
		if string(s) == id {
			n.active = i
			return true
		}
	}
	return false
}

func (n *Navigator) Active() Section { return Sections[n.active] }

// Visible reports whether the panel with panelID is shown.
func (n *Navigator) Visible(panelID string) bool {
	return n.Active().PanelID() == panelID
}

func (n *Navigator) Next() { n.active = (n.active + 1) % len(Sections) }

func (n *Navigator) Prev() { n.active = (n.active - 1 + len(Sections)) % len(Sections) }

// Tabs renders the navigation bar with the active tab highlighted.
func (n *Navigator) Tabs(p *Palette) string {
	tabs := make([]string, len(Sections))
	for i, s := range Sections {
		label := fmt.Sprintf("%d %s", i+1, s.Title())
		if i == n.active {
			tabs[i] = p.activeTab.Render(label)
		} else {
			tabs[i] = p.tab.Render(label)
		}
	}
	return strings.Join(tabs, " ")
}
