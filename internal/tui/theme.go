package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Tab bar styles
	TabStyle       = lipgloss.NewStyle().Padding(0, 2)
	ActiveTabStyle = TabStyle.Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))
	InactiveTabStyle = TabStyle.
				Foreground(lipgloss.Color("#888888"))

	// Deposit amount emphasis
	AmountStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")).Bold(true)
	TokenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))

	// Channel status colors
	ChannelReadyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	ChannelDegradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	ChannelOfflineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	// General styles
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	SubtextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	SpinnerColor = lipgloss.Color("#7D56F4")

	// Chat styles
	UserMsgStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	AgentMsgStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	SourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)
)
