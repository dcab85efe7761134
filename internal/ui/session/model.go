// Package session provides the interactive breathing session view: the
// exercise list, the live countdown, and the ambient track footer.
package session

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/breathe/internal/audio"
	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/breathing/domain"
	"github.com/zjrosen/breathe/internal/exercises"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/relaxation"
)

// Host is the session surface the view drives. *relaxation.Host implements it.
type Host interface {
	Begin(ctx context.Context, ex *domain.Exercise) error
	End()
	ToggleAmbient() bool
	ToggleChannel(id string) bool
	AdjustVolume(delta int) int
	Close()
	State() breathing.State
	Channels() []audio.ChannelState
	ChannelEnabled(id string) bool
	AmbientOn() bool
	Volume() int
	LastExercise() string
}

var _ Host = (*relaxation.Host)(nil)

// Catalog lists the exercises to offer. *exercises.Registry implements it.
type Catalog interface {
	All() []exercises.Entry
}

// Options tunes rendering.
type Options struct {
	ShowBenefits   bool
	RenderMarkdown bool
	// MarkdownStyle is a glamour standard style name; defaults to "dark".
	MarkdownStyle string
	// Zones defaults to a new bubblezone manager.
	Zones *zone.Manager
}

// Model holds the session view state.
type Model struct {
	host     Host
	catalog  Catalog
	notifier *Notifier
	opts     Options
	keys     KeyMap
	help     help.Model
	zones    *zone.Manager
	prefix   string

	entries []exercises.Entry
	cursor  int
	state   breathing.State
	warning string

	width  int
	height int

	md      *glamour.TermRenderer
	mdWidth int
}

// New creates the session view. The cursor starts on the host's last exercise.
func New(host Host, catalog Catalog, notifier *Notifier, opts Options) Model {
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = "dark"
	}
	zones := opts.Zones
	if zones == nil {
		zones = zone.New()
	}

	m := Model{
		host:     host,
		catalog:  catalog,
		notifier: notifier,
		opts:     opts,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		zones:    zones,
		prefix:   zones.NewPrefix(),
		state:    host.State(),
	}
	m.entries = catalog.All()
	m.cursor = m.indexOf(host.LastExercise())
	return m
}

// Init starts listening for background notifications.
func (m Model) Init() tea.Cmd {
	return m.notifier.wait()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case stateMsg:
		if s := breathing.State(msg); !s.OlderThan(m.state) {
			m.state = s
		}
		return m, m.notifier.wait()

	case warningMsg:
		m.warning = msg.err.Error()
		return m, m.notifier.wait()

	case reloadMsg:
		m = m.reload()
		return m, m.notifier.wait()

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i := range m.entries {
			if m.zones.Get(m.zoneID(i)).InBounds(msg) {
				m.cursor = i
				return m.start(), nil
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.host.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Start):
		return m.start(), nil

	case key.Matches(msg, m.keys.Stop):
		m.host.End()
		m.state = m.host.State()

	case key.Matches(msg, m.keys.Ambient):
		m.host.ToggleAmbient()

	case key.Matches(msg, m.keys.Channel):
		n, err := strconv.Atoi(msg.String())
		channels := m.host.Channels()
		if err == nil && n >= 1 && n <= len(channels) {
			m.host.ToggleChannel(channels[n-1].ID)
		}

	case key.Matches(msg, m.keys.VolumeUp):
		m.host.AdjustVolume(relaxation.VolumeStep)

	case key.Matches(msg, m.keys.VolumeDown):
		m.host.AdjustVolume(-relaxation.VolumeStep)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m Model) start() Model {
	ex := m.selected()
	if ex == nil {
		return m
	}
	if err := m.host.Begin(context.Background(), ex); err != nil {
		log.ErrorErr(log.CatUI, "Failed to start exercise", err, "exercise", ex.ID)
		m.warning = err.Error()
		return m
	}
	m.warning = ""
	m.state = m.host.State()
	return m
}

func (m Model) reload() Model {
	current := ""
	if ex := m.selected(); ex != nil {
		current = ex.ID
	}
	m.entries = m.catalog.All()
	m.cursor = m.indexOf(current)
	log.Debug(log.CatUI, "Exercise list refreshed", "count", len(m.entries))
	return m
}

// SetSize updates the view dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.help.Width = width
	if m.opts.RenderMarkdown {
		m = m.withRenderer(width - listWidth(width) - 4)
	}
	return m
}

func (m Model) withRenderer(width int) Model {
	width = max(width, 20)
	if m.md != nil && m.mdWidth == width {
		return m
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.opts.MarkdownStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		log.ErrorErr(log.CatUI, "Failed to create markdown renderer", err)
		m.md = nil
		return m
	}
	m.md = r
	m.mdWidth = width
	return m
}

func (m Model) selected() *domain.Exercise {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	return m.entries[m.cursor].Exercise
}

// indexOf returns the position of id, or 0 when it is not listed.
func (m Model) indexOf(id string) int {
	for i, e := range m.entries {
		if e.Exercise.ID == id {
			return i
		}
	}
	return 0
}

func (m Model) zoneID(i int) string {
	return m.prefix + "exercise-" + strconv.Itoa(i)
}

// State returns the last breathing state the view received.
func (m Model) State() breathing.State {
	return m.state
}

// Warning returns the soft warning currently shown, if any.
func (m Model) Warning() string {
	return m.warning
}
