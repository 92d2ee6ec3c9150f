package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

// Chat message types.
type chatReplyMsg struct {
	text    string
	channel domain.ChannelID
}
type chatErrMsg struct{ err error }

// ChatModel is the Bubble Tea model for the agent chat screen.
type ChatModel struct {
	services    Services
	messages    []domain.ChatMessage
	input       textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	preferLocal bool
	waiting     bool
	err         error
	width       int
	height      int
	ready       bool
}

// NewChatModel creates a new chat model.
func NewChatModel(svc Services) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about whales, or paste a wallet address..."
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SpinnerColor)

	return ChatModel{
		services:    svc,
		input:       ti,
		spinner:     sp,
		preferLocal: svc.PreferLocal,
	}
}

// Init initializes the chat model.
func (m ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m ChatModel) Update(msg tea.Msg) (ChatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case chatReplyMsg:
		m.messages = append(m.messages, domain.ChatMessage{
			ID:        uuid.NewString(),
			Role:      "agent",
			Content:   msg.text,
			Channel:   msg.channel,
			Timestamp: time.Now(),
		})
		m.waiting = false
		m.err = nil
		m.viewport.SetContent(m.renderMessages())
		m.viewport.GotoBottom()
		return m, nil

	case chatErrMsg:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text != "" {
				m.messages = append(m.messages, domain.ChatMessage{
					ID:        uuid.NewString(),
					Role:      "user",
					Content:   text,
					Timestamp: time.Now(),
				})
				m.input.SetValue("")
				m.waiting = true
				m.viewport.SetContent(m.renderMessages())
				m.viewport.GotoBottom()
				return m, tea.Batch(
					m.resolveCmd(text),
					m.spinner.Tick,
				)
			}
		}
		if key.Matches(msg, DefaultKeyMap.TogglePreference) && !m.waiting {
			m.preferLocal = !m.preferLocal
			return m, nil
		}

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Update text input
	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update viewport
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the chat screen.
func (m ChatModel) View() string {
	if m.services.Chat == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			HeaderStyle.Render("  Chat with Whale Agent"),
			"",
			SubtextStyle.Render("  Chat not available."),
		)
	}

	var sections []string

	pref := "local first"
	if !m.preferLocal {
		pref = "remote first"
	}
	sections = append(sections, HeaderStyle.Render("  Chat with Whale Agent")+
		SubtextStyle.Render("  ("+pref+", ctrl+p to toggle)"))
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	// Message viewport
	if !m.ready {
		m.initViewport()
	}
	sections = append(sections, m.viewport.View())

	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	// Input bar
	if m.waiting {
		sections = append(sections, fmt.Sprintf("  %s Resolving...", m.spinner.View()))
	} else {
		if m.err != nil {
			sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		}
		sections = append(sections, "  "+m.input.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the model dimensions.
func (m *ChatModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = w - 6
	if m.ready {
		m.viewport.Width = w - 2
		m.viewport.Height = h - 6 // account for header, borders, input
	}
	m.ready = false // re-initialize viewport on next View
}

// Focus gives focus to the text input.
func (m *ChatModel) Focus() {
	m.input.Focus()
}

// Blur removes focus from the text input.
func (m *ChatModel) Blur() {
	m.input.Blur()
}

// IsWaiting returns whether the model is waiting for a response (for testing).
func (m ChatModel) IsWaiting() bool { return m.waiting }

// MessageCount returns the number of messages (for testing).
func (m ChatModel) MessageCount() int { return len(m.messages) }

// PrefersLocal returns the current channel preference (for testing).
func (m ChatModel) PrefersLocal() bool { return m.preferLocal }

func (m *ChatModel) initViewport() {
	vpHeight := m.height - 6
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := m.width - 2
	if vpWidth < 10 {
		vpWidth = 10
	}
	m.viewport = viewport.New(vpWidth, vpHeight)
	m.viewport.SetContent(m.renderMessages())
	m.ready = true
}

func (m ChatModel) renderMessages() string {
	if len(m.messages) == 0 {
		return SubtextStyle.Render("  Ask about whale deposits, or paste a wallet address.")
	}

	var lines []string
	for _, msg := range m.messages {
		timestamp := SubtextStyle.Render(msg.Timestamp.Format("15:04"))
		switch msg.Role {
		case "user":
			lines = append(lines, fmt.Sprintf("  %s  %s %s",
				timestamp,
				UserMsgStyle.Render("You:"),
				msg.Content,
			))
		case "agent":
			source := ""
			if msg.Channel != "" {
				source = " " + SourceStyle.Render("[via "+string(msg.Channel)+"]")
			}
			lines = append(lines, fmt.Sprintf("  %s  %s%s",
				timestamp,
				AgentMsgStyle.Render("Agent:"),
				source,
			))
			for _, line := range strings.Split(msg.Content, "\n") {
				lines = append(lines, "         "+line)
			}
		}
		lines = append(lines, "")
	}

	if m.waiting {
		lines = append(lines, fmt.Sprintf("  %s  %s",
			SubtextStyle.Render(time.Now().Format("15:04")),
			SubtextStyle.Render("Agent is thinking..."),
		))
	}

	return strings.Join(lines, "\n")
}

func (m ChatModel) resolveCmd(message string) tea.Cmd {
	pref := domain.PreferLocal
	if !m.preferLocal {
		pref = domain.PreferRemote
	}
	return func() tea.Msg {
		if m.services.Chat == nil {
			return chatErrMsg{err: fmt.Errorf("chat not available")}
		}
		outcome := m.services.Chat.Resolve(context.Background(), message, pref)
		if !outcome.Success {
			return chatErrMsg{err: fmt.Errorf("no channel produced a response (%s)", outcome.ErrorKind)}
		}
		return chatReplyMsg{text: outcome.Response, channel: outcome.Channel}
	}
}
