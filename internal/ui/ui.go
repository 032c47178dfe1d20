package ui

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/player"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

const (
	defaultFPS     = 30
	backdropRows   = 3
	visualizerRows = 6
	seekStep       = 5.0
	inputWidth     = 60
)

// Options are the collaborators of the TUI. Orchestrator, Player, History, Favorites and Theme are required.
type Options struct {
	Orchestrator *tasks.Orchestrator
	Player       *player.Manager
	Events       <-chan player.Event
	History      *repositories.History
	Favorites    *repositories.FavoritesRepository
	Theme        *repositories.ThemeRepository
	Downloader   tasks.Downloader
	BackendURL   string
	Generation   shared.GenerationConfig
	UI           shared.UIConfig
	Logger       *log.Logger
	OpenURL      func(string) error
	Rand         *rand.Rand
}

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *log.Logger

	nav      *Navigator
	backdrop *Backdrop
	slider   DurationSlider
	presets  presetCycler
	input    textinput.Model
	spinner  spinner.Model
	favList  list.Model
	help     help.Model
	keys     keyMap

	favorites []models.FavoriteEntry
	favErr    error
	theme     string
	palette   *Palette

	notice       string
	noticeFailed bool
	width        int
	height       int
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.UI.FPS <= 0 {
		opts.UI.FPS = defaultFPS
	}

	input := textinput.New()
	input.Placeholder = "Describe the music you want..."
	input.CharLimit = 500
	input.Width = inputWidth

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	favList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	favList.Title = "Favorites"
	favList.SetShowHelp(false)
	favList.SetFilteringEnabled(false)

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger,
		nav:      NewNavigator(),
		backdrop: NewBackdrop(0, backdropRows, opts.UI.Particles, opts.Rand),
		slider:   NewDurationSlider(opts.Generation),
		input:    input,
		spinner:  sp,
		favList:  favList,
		help:     help.New(),
		keys:     newKeyMap(),
	}

	theme, err := opts.Theme.Get()
	if err != nil {
		m.logger.Warn("failed to load theme", "err", err)
	}
	m.setTheme(theme)
	m.reloadFavorites()
	return m
}

// Init starts the animation loop and the player event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.frameTick(), m.waitForEvent(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.backdrop.Resize(msg.Width, backdropRows)
		m.favList.SetSize(msg.Width-4, max(msg.Height-14, 4))
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.opts.Orchestrator.Status().Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.handleInputKeys(msg)
		}
		return m.handleKeys(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgRequestComplete:
		res := msg.data.(tasks.Result)
		m.opts.Orchestrator.Complete(res)
		return m, nil

	case MsgPlayerEvent:
		ev := msg.data.(player.Event)
		if m.opts.Player.HandleEvent(ev) && ev.Kind == player.EventError {
			m.opts.Orchestrator.SetStatus(fmt.Sprintf("Error: %v", ev.Err), true)
		}
		return m, m.waitForEvent()

	case MsgFrame:
		m.backdrop.Step()
		return m, m.frameTick()

	case MsgDownloadComplete:
		res := msg.data.(downloadResult)
		if res.err != nil {
			m.setNotice(fmt.Sprintf("Download failed: %v", res.err), true)
		} else {
			m.setNotice(fmt.Sprintf("Saved %s (%s)", res.path, humanize.Bytes(uint64(res.bytes))), false)
		}
		return m, nil

	case MsgBrowserOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.setNotice(fmt.Sprintf("Could not open %s: %v", data.url, data.err), true)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		return m, m.submitPrompt()
	case key.Matches(msg, m.keys.back):
		m.input.Blur()
		return m, nil
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.nextTab):
		m.nav.Next()
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.nav.Prev()
		return m, nil
	case key.Matches(msg, m.keys.dashboard):
		m.nav.Show(string(SectionDashboard))
		return m, nil
	case key.Matches(msg, m.keys.history):
		m.nav.Show(string(SectionHistory))
		return m, nil
	case key.Matches(msg, m.keys.favorites):
		m.reloadFavorites()
		m.nav.Show(string(SectionFavorites))
		return m, nil
	case key.Matches(msg, m.keys.settings):
		m.nav.Show(string(SectionSettings))
		return m, nil
	case key.Matches(msg, m.keys.theme):
		m.toggleTheme()
		return m, nil
	case key.Matches(msg, m.keys.playPause):
		m.togglePlayback()
		return m, nil
	case key.Matches(msg, m.keys.seekBack):
		m.opts.Player.SeekBy(-seekStep)
		return m, nil
	case key.Matches(msg, m.keys.seekForward):
		m.opts.Player.SeekBy(seekStep)
		return m, nil
	case key.Matches(msg, m.keys.shorter):
		m.slider.Decrease()
		return m, nil
	case key.Matches(msg, m.keys.longer):
		m.slider.Increase()
		return m, nil
	case key.Matches(msg, m.keys.harmonize):
		return m, m.submitTrack(tasks.KindHarmonize)
	case key.Matches(msg, m.keys.reharmonize):
		return m, m.submitTrack(tasks.KindReharmonize)
	case key.Matches(msg, m.keys.favorite):
		m.saveFavorite()
		return m, nil
	case key.Matches(msg, m.keys.download):
		return m, m.downloadCurrent()
	case key.Matches(msg, m.keys.open):
		return m, m.openCurrent()
	case key.Matches(msg, m.keys.focus):
		m.nav.Show(string(SectionDashboard))
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.preset):
		m.nav.Show(string(SectionDashboard))
		m.input.SetValue(m.presets.Next())
		m.input.CursorEnd()
		return m, m.input.Focus()
	}

	if m.nav.Active() == SectionFavorites {
		return m.handleFavoritesKeys(msg)
	}
	return m, nil
}

func (m *Model) handleFavoritesKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.favList.SelectedItem().(favoriteItem); ok {
			m.playFavorite(item.favorite)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.favList.SelectedItem().(favoriteItem); ok {
			m.removeFavorite(item.index)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.favList, cmd = m.favList.Update(msg)
	return m, cmd
}

// submitPrompt issues a generate request and clears the input. Submissions are ignored while the control is disabled.
func (m *Model) submitPrompt() tea.Cmd {
	if !m.opts.Orchestrator.Status().ControlEnabled {
		return nil
	}
	prompt := m.input.Value()
	if strings.TrimSpace(prompt) == "" {
		return nil
	}
	m.input.Reset()
	return m.submit(tasks.KindGenerate, tasks.Input{Prompt: prompt, Duration: m.slider.Value()})
}

func (m *Model) submitTrack(kind tasks.Kind) tea.Cmd {
	track, _ := m.opts.Player.Track()
	return m.submit(kind, tasks.Input{Prompt: track.Prompt, Filename: track.Filename, Duration: m.slider.Value()})
}

func (m *Model) submit(kind tasks.Kind, in tasks.Input) tea.Cmd {
	req, err := m.opts.Orchestrator.Begin(kind, in)
	if err != nil {
		m.setNotice(userMessage(err), true)
		return nil
	}
	m.notice = ""
	return tea.Batch(m.execute(req), m.spinner.Tick)
}

func (m *Model) execute(req tasks.Request) tea.Cmd {
	return func() tea.Msg {
		return requestCompleteMsg(m.opts.Orchestrator.Execute(m.ctx, req))
	}
}

func (m *Model) togglePlayback() {
	if err := m.opts.Player.TogglePlayPause(); err != nil {
		if errors.Is(err, shared.ErrNoTrack) {
			return
		}
		m.opts.Orchestrator.SetStatus(fmt.Sprintf("Error: %v", err), true)
	}
}

func (m *Model) saveFavorite() {
	track, ok := m.opts.Player.Track()
	if !ok {
		m.setNotice("Nothing to save yet.", true)
		return
	}
	if _, err := m.opts.Favorites.Add(track); err != nil {
		m.logger.Error("failed to save favorite", "err", err)
		m.setNotice(fmt.Sprintf("Could not save favorite: %v", err), true)
		return
	}
	m.reloadFavorites()
	m.setNotice("Saved to favorites.", false)
}

func (m *Model) removeFavorite(index int) {
	if err := m.opts.Favorites.Remove(index); err != nil {
		m.setNotice(fmt.Sprintf("Could not remove favorite: %v", err), true)
		return
	}
	m.reloadFavorites()
}

func (m *Model) playFavorite(f models.FavoriteEntry) {
	if err := m.opts.Player.Show(f.Track()); err != nil {
		m.opts.Orchestrator.SetStatus(fmt.Sprintf("Error: %v", err), true)
		return
	}
	m.nav.Show(string(SectionDashboard))
}

func (m *Model) reloadFavorites() {
	favorites, err := m.opts.Favorites.List()
	m.favErr = err
	if err != nil {
		m.logger.Warn("failed to load favorites", "err", err)
	}
	m.favorites = favorites
	m.favList.SetItems(favoriteItems(favorites))
}

func (m *Model) toggleTheme() {
	theme, err := m.opts.Theme.Toggle()
	if err != nil {
		m.setNotice(fmt.Sprintf("Could not save theme: %v", err), true)
	}
	m.setTheme(theme)
}

func (m *Model) setTheme(theme string) {
	m.theme = theme
	m.palette = PaletteFor(theme)
}

func (m *Model) downloadCurrent() tea.Cmd {
	track, ok := m.opts.Player.Track()
	if !ok || track.Filename == "" || m.opts.Downloader == nil {
		m.setNotice("Nothing to download yet.", true)
		return nil
	}
	dir := m.opts.Generation.DownloadDir
	m.setNotice(fmt.Sprintf("Downloading %s...", track.Filename), false)
	return func() tea.Msg {
		path, n, err := tasks.DownloadTrack(m.ctx, m.opts.Downloader, track.Filename, dir)
		return downloadCompleteMsg(path, n, err)
	}
}

func (m *Model) openCurrent() tea.Cmd {
	track, ok := m.opts.Player.Track()
	if !ok || track.DownloadURL == "" {
		m.setNotice("Nothing to open yet.", true)
		return nil
	}
	url := services.ResolveURL(m.opts.BackendURL, track.DownloadURL)
	open := m.opts.OpenURL
	return func() tea.Msg {
		return browserOpenedMsg(url, open(url))
	}
}

func (m *Model) setNotice(text string, failed bool) {
	m.notice = text
	m.noticeFailed = failed
}

func (m *Model) frameTick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.opts.UI.FPS), func(time.Time) tea.Msg {
		return frameMsg()
	})
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.opts.Events == nil {
		return nil
	}
	events := m.opts.Events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return playerEventMsg(ev)
	}
}

// View renders the backdrop, the tabs, the active section and the status line.
func (m *Model) View() string {
	p := m.palette
	var b strings.Builder

	if bd := m.backdrop.View(p); bd != "" {
		b.WriteString(bd)
		b.WriteString("\n")
	}
	b.WriteString(p.title.Render("♫ Tunesmith"))
	b.WriteString("\n")
	b.WriteString(m.nav.Tabs(p))
	b.WriteString("\n\n")

	switch m.nav.Active() {
	case SectionDashboard:
		b.WriteString(m.renderDashboard())
	case SectionHistory:
		b.WriteString(m.renderHistory())
	case SectionFavorites:
		b.WriteString(m.renderFavorites())
	case SectionSettings:
		b.WriteString(m.renderSettings())
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(m.width-4, 20)
}

func (m *Model) renderDashboard() string {
	p := m.palette
	status := m.opts.Orchestrator.Status()

	prompt := m.input.View()
	if !status.ControlEnabled {
		prompt += " " + p.help.Render("(busy)")
	}

	rows := []string{
		p.accent.Render("Prompt"),
		prompt,
		"",
		p.accent.Render("Duration"),
		m.slider.View(30),
	}

	st := m.opts.Player.State()
	if st.Visible {
		rows = append(rows, "", m.renderPlayer(st))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderPlayer(st player.State) string {
	p := m.palette
	width := m.contentWidth() - 4
	track, _ := m.opts.Player.Track()

	title := runewidth.Truncate(shared.EscapeText(track.Prompt), width, "…")
	meta := fmt.Sprintf("Genre: %s  Mood: %s  Tempo: %s",
		shared.EscapeText(st.Genre), shared.EscapeText(st.Mood), shared.EscapeText(st.Tempo))
	transport := fmt.Sprintf("[%s] %s / %s  %s",
		st.PlayLabel(),
		shared.FormatSeconds(st.Position),
		shared.FormatSeconds(st.Duration),
		progressBar(st.Progress(), max(width-30, 10)),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		p.ok.Render(title),
		p.help.Render(meta),
		transport,
		"",
		m.opts.Player.Frame(width, visualizerRows),
	)
	return p.panel.Render(body)
}

func progressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = min(max(filled, 0), width)
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func (m *Model) renderHistory() string {
	p := m.palette
	entries := m.opts.History.Entries()
	if len(entries) == 0 {
		return p.help.Render("No requests yet.")
	}

	width := m.contentWidth()
	lines := make([]string, len(entries))
	for i, e := range entries {
		status := p.ok.Render(e.Status)
		switch e.Status {
		case tasks.LabelFailed:
			status = p.err.Render(e.Status)
		case tasks.LabelInProgress:
			status = p.warn.Render(e.Status)
		}
		prefix := fmt.Sprintf("%s  ", e.CreatedAt.Format("15:04:05"))
		room := max(width-runewidth.StringWidth(prefix)-runewidth.StringWidth(e.Status)-3, 8)
		prompt := runewidth.Truncate(shared.EscapeText(e.Prompt), room, "…")
		lines[i] = fmt.Sprintf("%s%s  %s", p.help.Render(prefix), prompt, status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFavorites() string {
	p := m.palette
	if m.favErr != nil {
		return p.err.Render(fmt.Sprintf("Could not load favorites: %v", m.favErr))
	}
	if len(m.favorites) == 0 {
		return p.help.Render(repositories.EmptyFavoritesMessage)
	}
	return m.favList.View()
}

func (m *Model) renderSettings() string {
	p := m.palette
	g := m.opts.Generation
	rows := [][2]string{
		{"Backend", m.opts.BackendURL},
		{"Theme", m.theme},
		{"Duration range", fmt.Sprintf("%d-%ds (step %d)", g.MinDuration, g.MaxDuration, g.Step)},
		{"Download directory", g.DownloadDir},
		{"Favorites saved", fmt.Sprintf("%d", len(m.favorites))},
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = fmt.Sprintf("%s %s", p.accent.Render(fmt.Sprintf("%-20s", r[0])), r[1])
	}
	lines = append(lines, "", p.help.Render("press t to toggle the theme"))
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	p := m.palette
	status := m.opts.Orchestrator.Status()

	var line string
	switch {
	case status.Busy:
		text := status.Text
		if n := m.opts.Orchestrator.InFlight(); n > 1 {
			text = fmt.Sprintf("%s (%d requests running)", text, n)
		}
		line = fmt.Sprintf("%s %s", m.spinner.View(), p.warn.Render(text))
	case status.Failed:
		line = p.err.Render(status.Text)
	case status.Text != "":
		line = p.ok.Render(status.Text)
	}

	if m.notice != "" {
		notice := p.help.Render(m.notice)
		if m.noticeFailed {
			notice = p.err.Render(m.notice)
		}
		if line != "" {
			line += "  "
		}
		line += notice
	}
	return line
}

// userMessage turns validation errors into short status text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, shared.ErrNoTrack):
		return "Generate a track first."
	case errors.Is(err, shared.ErrInvalidInput):
		return "Enter a prompt first."
	}
	return err.Error()
}
