package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up          key.Binding
	down        key.Binding
	enter       key.Binding
	back        key.Binding
	focus       key.Binding
	preset      key.Binding
	playPause   key.Binding
	seekBack    key.Binding
	seekForward key.Binding
	shorter     key.Binding
	longer      key.Binding
	harmonize   key.Binding
	reharmonize key.Binding
	favorite    key.Binding
	remove      key.Binding
	download    key.Binding
	open        key.Binding
	theme       key.Binding
	nextTab     key.Binding
	prevTab     key.Binding
	dashboard   key.Binding
	history     key.Binding
	favorites   key.Binding
	settings    key.Binding
	help        key.Binding
	quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "generate")),
		back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		focus:       key.NewBinding(key.WithKeys("/", "i"), key.WithHelp("/", "prompt")),
		preset:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preset")),
		playPause:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		seekBack:    key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "-5s")),
		seekForward: key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "+5s")),
		shorter:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "shorter")),
		longer:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "longer")),
		harmonize:   key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "harmonize")),
		reharmonize: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reharmonize")),
		favorite:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "save favorite")),
		remove:      key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		download:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open in browser")),
		theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		nextTab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next section")),
		prevTab:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous section")),
		dashboard:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		history:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "history")),
		favorites:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "favorites")),
		settings:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "settings")),
		help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.focus, k.playPause, k.favorite, k.nextTab, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.focus, k.enter, k.preset, k.shorter, k.longer},
		{k.playPause, k.seekBack, k.seekForward, k.harmonize, k.reharmonize},
		{k.favorite, k.remove, k.download, k.open, k.theme},
		{k.nextTab, k.prevTab, k.dashboard, k.history, k.favorites, k.settings},
		{k.up, k.down, k.back, k.help, k.quit},
	}
}
