package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Channel status message types.
type channelsMsg []domain.ChannelStatus
type channelsErrMsg struct{ err error }

// ChannelsModel is the Bubble Tea model for the channel status screen.
type ChannelsModel struct {
	services Services
	statuses []domain.ChannelStatus
	loading  bool
	err      error
	width    int
	height   int
}

// NewChannelsModel creates a new channel status model.
func NewChannelsModel(svc Services) ChannelsModel {
	return ChannelsModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial status probe.
func (m ChannelsModel) Init() tea.Cmd {
	return m.fetchStatusCmd()
}

// Update handles incoming messages.
func (m ChannelsModel) Update(msg tea.Msg) (ChannelsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case channelsMsg:
		m.statuses = []domain.ChannelStatus(msg)
		m.loading = false
		m.err = nil
		return m, nil

	case channelsErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, DefaultKeyMap.Refresh) {
			m.loading = true
			return m, m.fetchStatusCmd()
		}
	}

	return m, nil
}

// View renders the channel status list.
func (m ChannelsModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Response Channels"))
	sections = append(sections, "")

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Probing channels..."))
		return strings.Join(sections, "\n")
	}
	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	for _, s := range m.statuses {
		sections = append(sections, "  "+renderChannelLine(s))
	}

	sections = append(sections, "")
	pref := "local channels first"
	if !m.services.PreferLocal {
		pref = "remote gateway first"
	}
	sections = append(sections, SubtextStyle.Render("  Default routing: "+pref))
	sections = append(sections, SubtextStyle.Render("  [R] refresh"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *ChannelsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// StatusCount returns the number of loaded statuses (for testing).
func (m ChannelsModel) StatusCount() int { return len(m.statuses) }

func renderChannelLine(s domain.ChannelStatus) string {
	var state string
	switch {
	case s.Configured && s.Reachable:
		state = ChannelReadyStyle.Render("● ready")
	case s.Configured:
		state = ChannelDegradedStyle.Render("● configured, unreachable")
	default:
		state = ChannelOfflineStyle.Render("● not configured")
	}

	line := fmt.Sprintf("%-8s %s", s.Channel, state)
	if s.Endpoint != "" {
		line += "  " + SubtextStyle.Render(s.Endpoint)
	}
	return line
}

func (m ChannelsModel) fetchStatusCmd() tea.Cmd {
	return func() tea.Msg {
		if m.services.Chat == nil {
			return channelsErrMsg{err: fmt.Errorf("resolver not available")}
		}
		return channelsMsg(m.services.Chat.ChannelStatuses(context.Background()))
	}
}
