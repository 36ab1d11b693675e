// Package tui is a terminal front end for the Mini App pages. It drives the
// same page controllers as the web server; the terminal plays the Telegram
// host, with enter standing in for the main button.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/profit-sniffer/pkg/filters"
	"github.com/profit-sniffer/pkg/pages"
	"github.com/profit-sniffer/pkg/telegram"
)

type Screen int

const (
	ScreenLanding Screen = iota
	ScreenFilters
	ScreenTokens
)

// Backend is what the screens need from the API.
type Backend interface {
	pages.FilterUpdater
	pages.TokenSetGetter
}

// Config selects the identity the terminal session runs as.
type Config struct {
	TelegramID int64 // 0 runs without a Telegram user
	Name       string
	DevMode    bool
	Logger     zerolog.Logger
	Options    []pages.Option
}

type Model struct {
	ctx    context.Context
	host   *telegram.RequestHost
	bridge *telegram.Bridge
	client Backend
	opts   []pages.Option

	screen  Screen
	cursor  int
	landing pages.LandingView
	filters *pages.FilterPage
	tokens  *pages.TokensPage
	busy    bool
	width   int
}

type submittedMsg struct{ notice pages.Notice }

type tokensMsg struct{}

// NewHost builds the terminal's stand-in for the Telegram WebView.
func NewHost(telegramID int64, name string) *telegram.RequestHost {
	if telegramID == 0 {
		return telegram.NewRequestHost(nil)
	}
	return telegram.NewRequestHost(&telegram.InitData{
		User: &telegram.WebAppUser{ID: telegramID, FirstName: name},
	})
}

func New(ctx context.Context, client Backend, cfg Config) *Model {
	host := NewHost(cfg.TelegramID, cfg.Name)
	opts := append([]pages.Option{pages.WithLogger(cfg.Logger)}, cfg.Options...)

	// Without an id the host has no init data, like a browser outside
	// Telegram, but the main button still works.
	bridge := telegram.NewBridge(host, cfg.DevMode, cfg.Logger)

	m := &Model{
		ctx:    ctx,
		host:   host,
		bridge: bridge,
		client: client,
		opts:   opts,
	}
	m.landing = pages.NewLandingPage(bridge, opts...).View()
	return m
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(ctx context.Context, client Backend, cfg Config) error {
	m := New(ctx, client, cfg)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	m.leave()
	return err
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Screen() Screen { return m.screen }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case submittedMsg:
		m.busy = false
		return m, nil
	case tokensMsg:
		m.busy = false
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.leave()
			return m, tea.Quit
		}
		switch m.screen {
		case ScreenFilters:
			return m.updateFilters(msg)
		case ScreenTokens:
			return m.updateTokens(msg)
		default:
			return m.updateLanding(msg)
		}
	}
	return m, nil
}

func (m *Model) updateLanding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.landing.Links)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.landing.Links) {
			return m, m.open(m.landing.Links[m.cursor].Href)
		}
	}
	return m, nil
}

// open routes to a landing link target.
func (m *Model) open(path string) tea.Cmd {
	switch path {
	case pages.FiltersPath:
		m.filters = pages.NewFilterPage(m.bridge, m.client, m.opts...)
		m.filters.Mount()
		m.screen, m.cursor = ScreenFilters, 0
		return nil
	case pages.TokensPath:
		m.tokens = pages.NewTokensPage(m.bridge, pages.NewSharedLoader(m.client), m.opts...)
		m.tokens.Attach(m.ctx)
		m.screen, m.busy = ScreenTokens, true
		p := m.tokens
		// Leaving before this runs unmounts p, and Load then does nothing.
		return func() tea.Msg {
			p.Load(m.ctx)
			return tokensMsg{}
		}
	}
	return nil
}

// leave unmounts whatever page is showing.
func (m *Model) leave() {
	if m.filters != nil {
		m.filters.Unmount()
		m.filters = nil
	}
	if m.tokens != nil {
		m.tokens.Unmount()
		m.tokens = nil
	}
	m.screen, m.cursor, m.busy = ScreenLanding, 0, false
}

func (m *Model) updateFilters(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := filters.Keys()
	key := keys[m.cursor]
	value := m.filters.Values().Get(key)

	switch msg.String() {
	case "esc":
		m.leave()
	case "up", "shift+tab":
		m.cursor = (m.cursor + len(keys) - 1) % len(keys)
	case "down", "tab":
		m.cursor = (m.cursor + 1) % len(keys)
	case "backspace":
		if value != "" {
			m.filters.Change(key, value[:len(value)-1])
		}
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		p := m.filters
		return m, func() tea.Msg {
			return submittedMsg{notice: p.Submit(m.ctx)}
		}
	default:
		if msg.Type == tea.KeyRunes {
			// Rejected keystrokes leave the field as it was.
			m.filters.Change(key, value+string(msg.Runes))
		}
	}
	return m, nil
}

func (m *Model) updateTokens(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.leave()
	case "enter", "r":
		if m.busy {
			return m, nil
		}
		// Enter is a tap on the main button; a bound click handler reloads.
		if !m.host.Directives().MainButtonBound {
			return m, nil
		}
		m.busy = true
		host := m.host
		return m, func() tea.Msg {
			host.Click()
			return tokensMsg{}
		}
	}
	return m, nil
}

func (m *Model) View() string {
	var body string
	switch m.screen {
	case ScreenFilters:
		body = m.viewFilters()
	case ScreenTokens:
		body = m.viewTokens()
	default:
		body = m.viewLanding()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer())
}

func (m *Model) viewLanding() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("💲 Welcome to ProfitSniffer!") + "\n")
	if g := m.landing.Greeting(); g != "" {
		sb.WriteString(styleMuted.Render(g) + "\n")
	}
	sb.WriteString("Your ultimate tool for tracking crypto opportunities\n\n")
	for i, l := range m.landing.Links {
		if i == m.cursor {
			sb.WriteString(styleLinkActive.Render("▸ "+l.Label) + "\n")
		} else {
			sb.WriteString(styleLink.Render("  "+l.Label) + "\n")
		}
	}
	return sb.String()
}

var iconText = map[filters.Icon]string{
	filters.IconCurrency: "$",
	filters.IconCalendar: "📅",
	filters.IconCount:    "#",
}

func (m *Model) viewFilters() string {
	v := m.filters.View()
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("🎚 Set Filters") + "\n")
	for i, f := range v.Fields {
		label := styleLabel
		if i == m.cursor {
			label = styleLabelActive
		}
		value := f.Value
		if value == "" {
			value = styleMuted.Render(f.Placeholder)
		} else {
			value = styleInput.Render(value)
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", iconText[f.Icon], label.Render(f.Label), value))
	}
	if m.busy {
		sb.WriteString("\n" + styleMuted.Render("Saving...") + "\n")
	}
	if !v.Notice.IsZero() {
		style := styleSuccess
		if v.Notice.IsFailure() {
			style = styleFailure
		}
		sb.WriteString("\n" + style.Render(v.Notice.Text) + "\n")
	}
	if v.ScreenURL != "" {
		sb.WriteString(styleMuted.Render(v.ScreenURL) + "\n")
	}
	return sb.String()
}

func (m *Model) viewTokens() string {
	v := m.tokens.View()
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Tokens") + "\n")
	switch v.State {
	case pages.TokensLoading:
		sb.WriteString("Loading...\n")
	case pages.TokensError:
		sb.WriteString(styleFailure.Render(v.ErrorText()) + "\n")
		sb.WriteString(styleMuted.Render("press r to retry") + "\n")
	case pages.TokensEmpty:
		sb.WriteString(pages.EmptyTokensText + "\n")
	default:
		if !v.UpdatedAt.IsZero() {
			sb.WriteString(styleMuted.Render("Updated "+v.UpdatedAt.Format("2006-01-02 15:04 MST")) + "\n")
		}
		for _, c := range v.Cards {
			sb.WriteString(renderCard(c) + "\n")
		}
	}
	return sb.String()
}

func renderCard(c pages.CardView) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Render(c.Name) + " " + styleMuted.Render("("+c.Symbol+")"),
		"💲 Price:       " + c.PriceText(),
		"💧 Liquidity:   " + c.LiquidityText(),
		"📊 24h Volume:  " + c.VolumeText(),
	}
	if c.ExplorerURL != "" {
		lines = append(lines, styleMuted.Render(c.ExplorerURL))
	}
	return styleCard.Render(strings.Join(lines, "\n"))
}

func (m *Model) footer() string {
	var parts []string
	if d := m.host.Directives(); d.MainButtonVisible && d.MainButtonText != "" {
		parts = append(parts, renderKey("enter", styleButton.Render(d.MainButtonText)))
	}
	switch m.screen {
	case ScreenLanding:
		parts = append(parts, renderKey("↑/↓", "move"), renderKey("enter", "open"), renderKey("q", "quit"))
	case ScreenFilters:
		parts = append(parts, renderKey("tab", "next field"), renderKey("esc", "back"))
	case ScreenTokens:
		parts = append(parts, renderKey("esc", "back"))
	}
	return "\n" + strings.Join(parts, "  ")
}
