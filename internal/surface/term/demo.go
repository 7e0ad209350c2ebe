package term

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jakestephens/banner/internal/banner"
	"github.com/jakestephens/banner/internal/config"
	"github.com/jakestephens/banner/internal/orientation"
	"github.com/jakestephens/banner/internal/runloop"
)

// DemoKeyMap defines the demo's key bindings.
type DemoKeyMap struct {
	Enqueue    key.Binding
	Front      key.Binding
	Level      key.Binding
	Edge       key.Binding
	Tap        key.Binding
	SwipeUp    key.Binding
	DismissAll key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// ShortHelp returns the footer bindings.
func (k DemoKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enqueue, k.Tap, k.SwipeUp, k.Help, k.Quit}
}

// FullHelp returns the expanded help grid.
func (k DemoKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Enqueue, k.Front, k.DismissAll},
		{k.Tap, k.SwipeUp},
		{k.Level, k.Edge},
		{k.Help, k.Quit},
	}
}

// DefaultDemoKeyMap returns the default key bindings.
func DefaultDemoKeyMap() DemoKeyMap {
	return DemoKeyMap{
		Enqueue: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new banner"),
		),
		Front: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "new at front"),
		),
		Level: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "cycle level"),
		),
		Edge: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "toggle edge"),
		),
		Tap: key.NewBinding(
			key.WithKeys("t", "enter"),
			key.WithHelp("t", "tap"),
		),
		SwipeUp: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "swipe up"),
		),
		DismissAll: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "dismiss all"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	chromeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// DemoModel is the bubbletea model behind the interactive showcase. Keys
// spawn and gesture banners; the surface pushes overlay snapshots back
// as OverlaysMsg.
type DemoModel struct {
	host  *Host
	loop  *runloop.Loop
	queue *banner.Queue
	feed  *orientation.Feed
	cfg   *config.DaemonConfig

	keys DemoKeyMap
	help help.Model

	overlays     []Overlay
	chromeHidden bool

	width    int
	height   int
	ready    bool
	counter  int
	level    banner.Level
	edge     banner.Edge
	showHelp bool
}

// NewDemoModel builds the demo over an already started loop and queue.
func NewDemoModel(host *Host, loop *runloop.Loop, queue *banner.Queue, feed *orientation.Feed, opts DemoOptions) DemoModel {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	edge := opts.Edge
	if edge == "" {
		edge = cfg.BannerEdge()
	}
	return DemoModel{
		host:     host,
		loop:     loop,
		queue:    queue,
		feed:     feed,
		cfg:      cfg,
		keys:     DefaultDemoKeyMap(),
		help:     help.New(),
		level:    banner.LevelNormal,
		edge:     edge,
		showHelp: opts.ShowHelp,
	}
}

// Init implements tea.Model.
func (m DemoModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m DemoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.host.Resize(msg.Width, msg.Height)
		return m, nil

	case OverlaysMsg:
		m.overlays = msg.Overlays
		m.chromeHidden = msg.ChromeHidden
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m DemoModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		if !m.showHelp {
			m.showHelp = true
		} else {
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case key.Matches(msg, m.keys.Enqueue):
		m.counter++
		m.spawn(m.counter, banner.QueueBack)
		return m, nil

	case key.Matches(msg, m.keys.Front):
		m.counter++
		m.spawn(m.counter, banner.QueueFront)
		return m, nil

	case key.Matches(msg, m.keys.Level):
		m.level = nextLevel(m.level)
		return m, nil

	case key.Matches(msg, m.keys.Edge):
		if m.edge == banner.EdgeBottom {
			m.edge = banner.EdgeTop
		} else {
			m.edge = banner.EdgeBottom
		}
		return m, nil

	case key.Matches(msg, m.keys.Tap):
		queue := m.queue
		m.loop.Post(func() {
			if front := queue.Front(); front != nil {
				front.HandleTap()
			}
		})
		return m, nil

	case key.Matches(msg, m.keys.SwipeUp):
		queue := m.queue
		m.loop.Post(func() {
			if front := queue.Front(); front != nil {
				front.HandleSwipeUp()
			}
		})
		return m, nil

	case key.Matches(msg, m.keys.DismissAll):
		m.loop.Post(m.queue.DismissAll)
		return m, nil
	}
	return m, nil
}

// spawn creates a sample banner and shows it on the presentation loop.
// Critical banners jump the queue when the config says so.
func (m DemoModel) spawn(n int, pos banner.QueuePosition) {
	level := m.level
	if level == banner.LevelCritical && m.cfg.Behavior.CriticalToFront {
		pos = banner.QueueFront
	}

	content := sampleContent(n, level)
	cfg := m.cfg.BannerConfigForLevel(level)
	edge := m.edge
	feed := m.feed
	queue := m.queue

	m.loop.Post(func() {
		b := banner.New(queue, cfg)
		b.SetContent(content)
		b.SetEvents(banner.EventFuncs{
			OnDidDisappear: func(b *banner.Banner) { b.StopOrientationUpdates() },
		})
		b.StartOrientationUpdates(feed)
		b.Show(pos, edge, nil)
	})
}

var samples = []struct{ app, summary, body string }{
	{"mail", "New message", "Quarterly numbers are in, take a look when you can."},
	{"calendar", "Standup in 5 minutes", "Room 2B, or the usual video link."},
	{"build", "Pipeline finished", "main passed in 4m12s."},
	{"chat", "Robin", "did you see the dashboards just now?"},
}

func sampleContent(n int, level banner.Level) banner.Content {
	s := samples[(n-1)%len(samples)]
	return banner.Content{
		App:     s.app,
		Summary: fmt.Sprintf("%s #%d", s.summary, n),
		Body:    s.body,
		Level:   level,
	}
}

func nextLevel(l banner.Level) banner.Level {
	switch l {
	case banner.LevelLow:
		return banner.LevelNormal
	case banner.LevelNormal:
		return banner.LevelCritical
	default:
		return banner.LevelLow
	}
}

// View composites the current overlays over the demo chrome.
func (m DemoModel) View() string {
	if !m.ready {
		return "starting..."
	}
	lines := Compose(m.backdrop(), m.overlays, m.width, m.height)
	return strings.Join(lines, "\n")
}

// backdrop draws the demo's own rows: a title, the current settings, and
// the help footer. The title row goes away while a banner owns the edge.
func (m DemoModel) backdrop() []string {
	lines := make([]string, m.height)

	if !m.chromeHidden {
		lines[0] = chromeStyle.Render(" banner demo ")
	}
	if m.height > 3 {
		lines[2] = statusStyle.Render(fmt.Sprintf(
			"  edge: %s   level: %s   showing: %d",
			m.edge, m.level, len(m.overlays),
		))
	}

	if m.showHelp {
		helpLines := strings.Split(m.help.View(m.keys), "\n")
		start := m.height - len(helpLines)
		for i, hl := range helpLines {
			if start+i >= 0 && start+i < m.height {
				lines[start+i] = hl
			}
		}
	}
	return lines
}

// DemoOptions configures the terminal showcase.
type DemoOptions struct {
	Config *config.DaemonConfig
	Logger *slog.Logger

	// Edge overrides the configured banner edge when set.
	Edge banner.Edge
	// ShowHelp draws the key binding footer from the start. The ? key
	// brings it up either way.
	ShowHelp bool
}

// RunDemo wires a presentation loop, a terminal surface, and a queue
// into a bubbletea program and blocks until the user quits.
func RunDemo(opts DemoOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loop := runloop.New(logger)
	loop.Start()
	defer loop.Stop()

	feed := orientation.NewFeed()
	host := NewHost(feed, logger)
	queue := banner.NewQueue(loop, host, logger)

	m := NewDemoModel(host, loop, queue, feed, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	host.SetProgram(p)

	_, err := p.Run()
	return err
}
