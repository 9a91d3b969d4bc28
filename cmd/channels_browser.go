package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/dkanim-cli/internal/core/domain"
	"github.com/kamal-hamza/dkanim-cli/internal/core/services"
	"github.com/kamal-hamza/dkanim-cli/pkg/ui"
)

// runChannelBrowser opens the browser and returns the configuration it ended with
func runChannelBrowser(ctx context.Context, idx *domain.ChannelScopeIndex, cfg domain.TransferConfiguration) (domain.TransferConfiguration, error) {
	m := newChannelBrowser(ctx, scopeService, idx, cfg)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return cfg, fmt.Errorf("error running channel browser: %w", err)
	}
	return final.(channelBrowser).cfg, nil
}

type browserMode int

const (
	browseList browserMode = iota
	browseFilter
)

type browserKeys struct {
	Up            key.Binding
	Down          key.Binding
	Toggle        key.Binding
	All           key.Binding
	None          key.Binding
	Add           key.Binding
	Remove        key.Binding
	Unkeyed       key.Binding
	ExplicitPaths key.Binding
	Rescan        key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func (k browserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Add, k.Remove, k.Rescan, k.Help, k.Quit}
}

func (k browserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.All, k.None},
		{k.Add, k.Remove},
		{k.Unkeyed, k.ExplicitPaths, k.Rescan},
		{k.Help, k.Quit},
	}
}

var channelKeys = browserKeys{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "space", "x"),
		key.WithHelp("space/x", "toggle"),
	),
	All: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	None: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "select none"),
	),
	Add: key.NewBinding(
		key.WithKeys("+"),
		key.WithHelp("+", "add matching"),
	),
	Remove: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "remove matching"),
	),
	Unkeyed: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "toggle unkeyed"),
	),
	ExplicitPaths: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "toggle explicit paths"),
	),
	Rescan: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "done"),
	),
}

type channelBrowser struct {
	ctx    context.Context
	scopes *services.ScopeService
	idx    *domain.ChannelScopeIndex
	cfg    domain.TransferConfiguration

	cursor   int
	offset   int
	mode     browserMode
	additive bool
	filter   textinput.Model
	help     help.Model
	keys     browserKeys
	width    int
	height   int
	message  string
}

func newChannelBrowser(ctx context.Context, scopes *services.ScopeService, idx *domain.ChannelScopeIndex, cfg domain.TransferConfiguration) channelBrowser {
	ti := textinput.New()
	ti.Placeholder = "*.rotate?"
	ti.CharLimit = 200
	ti.Width = 40

	return channelBrowser{
		ctx:    ctx,
		scopes: scopes,
		idx:    idx,
		cfg:    cfg,
		filter: ti,
		help:   help.New(),
		keys:   channelKeys,
	}
}

func (m channelBrowser) Init() tea.Cmd {
	return nil
}

func (m channelBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.adjustViewport()
		return m, nil

	case tea.KeyMsg:
		if m.mode == browseFilter {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m channelBrowser) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.idx.Len()-1 {
			m.cursor++
			m.adjustViewport()
		}

	case key.Matches(msg, m.keys.Toggle):
		if m.idx.Len() > 0 {
			_ = m.idx.Toggle(m.cursor + 1)
		}

	case key.Matches(msg, m.keys.All):
		m.idx.SelectAll()

	case key.Matches(msg, m.keys.None):
		m.idx.ClearSelection()

	case key.Matches(msg, m.keys.Add), key.Matches(msg, m.keys.Remove):
		m.additive = key.Matches(msg, m.keys.Add)
		m.mode = browseFilter
		m.filter.SetValue("")
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Unkeyed):
		next := m.cfg
		next.LoadUnkeyed = !next.LoadUnkeyed
		m.setConfig(next)

	case key.Matches(msg, m.keys.ExplicitPaths):
		next := m.cfg
		next.LoadExplicitPaths = !next.LoadExplicitPaths
		m.setConfig(next)

	case key.Matches(msg, m.keys.Rescan):
		m.rescan()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m channelBrowser) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = browseList
		m.filter.Blur()
		return m, nil

	case tea.KeyEnter:
		m.mode = browseList
		m.filter.Blur()
		pattern := strings.TrimSpace(m.filter.Value())
		if pattern != "" {
			n := m.scopes.Filter(m.idx, pattern, m.additive)
			verb := "deselected"
			if m.additive {
				verb = "selected"
			}
			m.message = fmt.Sprintf("%d channels %s", n, verb)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// setConfig records an option change and flags the scope the way it affects it
func (m *channelBrowser) setConfig(next domain.TransferConfiguration) {
	if stale, keep := services.StaleAfter(m.cfg, next); stale {
		m.idx.MarkStale(keep)
	}
	m.cfg = next
}

func (m *channelBrowser) rescan() {
	if _, err := m.scopes.Scan(m.ctx, m.idx, services.ScanRequest{Config: m.cfg}); err != nil {
		m.message = "Rescan failed: " + err.Error()
		return
	}
	if m.cursor >= m.idx.Len() {
		m.cursor = m.idx.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustViewport()
}

func (m channelBrowser) listHeight() int {
	h := m.height - 8
	if h < 3 {
		h = 3
	}
	return h
}

func (m *channelBrowser) adjustViewport() {
	h := m.listHeight()
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}

func (m channelBrowser) View() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Padding(0, 1).Render("Channel Scope")
	b.WriteString(title)
	b.WriteString("  ")
	b.WriteString(ui.FormatScopeLabel(m.idx.Label(), m.idx.RefreshNeeded()))
	b.WriteString("\n")
	b.WriteString(ui.FormatMuted(fmt.Sprintf(" %s  unkeyed:%t  explicit paths:%t", m.idx.Source(), m.cfg.LoadUnkeyed, m.cfg.LoadExplicitPaths)))
	b.WriteString("\n\n")

	entries := m.idx.Entries()
	if len(entries) == 0 {
		b.WriteString(ui.StyleSubtle.Render("  No channels found."))
		b.WriteString("\n")
	}

	end := m.offset + m.listHeight()
	if end > len(entries) {
		end = len(entries)
	}
	for i := m.offset; i < end; i++ {
		cursor := "  "
		if i == m.cursor {
			cursor = ui.StyleCursor.Render("▶ ")
		}
		b.WriteString(cursor)
		b.WriteString(ui.FormatChannel(entries[i].Key(), entries[i].Selected))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.mode == browseFilter {
		prompt := "Remove matching: "
		if m.additive {
			prompt = "Add matching: "
		}
		b.WriteString(ui.StylePrimary.Render(prompt))
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(ui.FormatInfo(m.message))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return b.String()
}
