package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Tab represents a screen tab in the TUI.
type Tab int

const (
	TabChat Tab = iota
	TabWhales
	TabChannels
)

var tabNames = []string{"1:Chat", "2:Whales", "3:Channels"}

// AppModel is the root Bubble Tea model. It owns the tab bar and routes
// messages to the child screens: data messages always reach their owner,
// keyboard input only reaches the active tab.
type AppModel struct {
	services  Services
	activeTab Tab
	chat      ChatModel
	whales    WhaleListModel
	channels  ChannelsModel
	width     int
	height    int
	quitting  bool
}

func NewAppModel(svc Services) AppModel {
	m := AppModel{
		services: svc,
		chat:     NewChatModel(svc),
		whales:   NewWhaleListModel(svc),
		channels: NewChannelsModel(svc),
	}
	m.chat.Focus()
	return m
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.chat.Init(), m.whales.Init(), m.channels.Init())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.propagateSize()
		return m, nil

	case tea.KeyMsg:
		if handled, model, cmd := m.handleGlobalKey(msg); handled {
			return model, cmd
		}

	case whalesMsg, whalesErrMsg:
		var cmd tea.Cmd
		m.whales, cmd = m.whales.Update(msg)
		return m, cmd

	case channelsMsg, channelsErrMsg:
		var cmd tea.Cmd
		m.channels, cmd = m.channels.Update(msg)
		return m, cmd

	case chatReplyMsg, chatErrMsg:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	}

	return m.updateActiveTab(msg)
}

// handleGlobalKey processes tab navigation and quit. While the chat input is
// focused, only tab/shift+tab, ctrl+c and the number keys act globally so
// typing is never swallowed.
func (m AppModel) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	s := msg.String()
	chatFocused := m.activeTab == TabChat
	if chatFocused && msg.Type != tea.KeyTab && msg.Type != tea.KeyShiftTab &&
		s != "ctrl+c" && (s < "1" || s > "3") {
		return false, m, nil
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Quit):
		if chatFocused && s == "q" {
			return false, m, nil
		}
		m.quitting = true
		return true, m, tea.Quit

	case key.Matches(msg, DefaultKeyMap.Tab):
		m.switchTab(Tab((int(m.activeTab) + 1) % len(tabNames)))
		return true, m, nil

	case key.Matches(msg, DefaultKeyMap.ShiftTab):
		next := int(m.activeTab) - 1
		if next < 0 {
			next = len(tabNames) - 1
		}
		m.switchTab(Tab(next))
		return true, m, nil

	case s == "1", s == "2", s == "3":
		m.switchTab(Tab(int(s[0] - '1')))
		return true, m, nil
	}

	return false, m, nil
}

func (m AppModel) updateActiveTab(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabChat:
		m.chat, cmd = m.chat.Update(msg)
	case TabWhales:
		m.whales, cmd = m.whales.Update(msg)
	case TabChannels:
		m.channels, cmd = m.channels.Update(msg)
	}
	return m, cmd
}

func (m AppModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string
	switch m.activeTab {
	case TabChat:
		content = m.chat.View()
	case TabWhales:
		content = m.whales.View()
	case TabChannels:
		content = m.channels.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabBar(), content)
}

// SetSize updates dimensions on the root model and propagates to children.
func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.propagateSize()
}

// ActiveTab returns the currently active tab (for testing).
func (m AppModel) ActiveTab() Tab { return m.activeTab }

func (m *AppModel) switchTab(tab Tab) {
	if tab == TabChat && m.activeTab != TabChat {
		m.chat.Focus()
	} else if m.activeTab == TabChat && tab != TabChat {
		m.chat.Blur()
	}
	m.activeTab = tab
}

func (m *AppModel) propagateSize() {
	contentHeight := m.height - 2 // tab bar
	m.chat.SetSize(m.width, contentHeight)
	m.whales.SetSize(m.width, contentHeight)
	m.channels.SetSize(m.width, contentHeight)
}

func (m AppModel) renderTabBar() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs[i] = ActiveTabStyle.Render(name)
		} else {
			tabs[i] = InactiveTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
