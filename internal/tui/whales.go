package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Whale list message types.
type whalesMsg []domain.DepositEvent
type whalesErrMsg struct{ err error }

var thresholdOptions = []float64{10_000_000, 5_000_000, 1_000_000, 500_000}

// WhaleListModel is the Bubble Tea model for the deposit list screen.
type WhaleListModel struct {
	services     Services
	deposits     []domain.DepositEvent
	thresholdIdx int
	scrollOffset int
	loading      bool
	err          error
	width        int
	height       int
}

// NewWhaleListModel creates a new whale list model.
func NewWhaleListModel(svc Services) WhaleListModel {
	return WhaleListModel{
		services: svc,
		loading:  true,
	}
}

// Init fires the initial deposit scan.
func (m WhaleListModel) Init() tea.Cmd {
	return m.fetchWhalesCmd()
}

// Update handles incoming messages.
func (m WhaleListModel) Update(msg tea.Msg) (WhaleListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case whalesMsg:
		m.deposits = []domain.DepositEvent(msg)
		m.loading = false
		m.scrollOffset = 0
		m.err = nil
		return m, nil

	case whalesErrMsg:
		m.err = msg.err
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.CycleThreshold):
			m.thresholdIdx = (m.thresholdIdx + 1) % len(thresholdOptions)
			m.loading = true
			return m, m.fetchWhalesCmd()

		case key.Matches(msg, DefaultKeyMap.Refresh):
			m.loading = true
			return m, m.fetchWhalesCmd()

		case msg.String() == "j" || msg.String() == "down":
			maxVisible := m.visibleRows()
			if m.scrollOffset < len(m.deposits)-maxVisible {
				m.scrollOffset++
			}
			return m, nil

		case msg.String() == "k" || msg.String() == "up":
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}
			return m, nil
		}
	}

	return m, nil
}

// View renders the whale list.
func (m WhaleListModel) View() string {
	var sections []string

	sections = append(sections, HeaderStyle.Render("  Whale Deposits"))
	sections = append(sections, "")
	sections = append(sections, m.renderThresholdChips())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", m.width-2)))

	if m.loading {
		sections = append(sections, SubtextStyle.Render("  Scanning bridge deposits..."))
		return strings.Join(sections, "\n")
	}

	if m.err != nil {
		sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		return strings.Join(sections, "\n")
	}

	if len(m.deposits) == 0 {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  No deposits above %s in the last %d minutes",
				domain.FormatUSD(m.threshold()), m.services.LookbackMinutes)))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, SubtextStyle.Render(
		fmt.Sprintf("  %-10s %-6s %-44s %s", "Amount", "Token", "Wallet", "Time"),
	))

	maxVisible := m.visibleRows()
	end := m.scrollOffset + maxVisible
	if end > len(m.deposits) {
		end = len(m.deposits)
	}

	for i := m.scrollOffset; i < end; i++ {
		d := m.deposits[i]
		sections = append(sections, fmt.Sprintf("  %s %s %-44s %s",
			AmountStyle.Render(fmt.Sprintf("%-10s", domain.FormatUSD(d.AmountUSD))),
			TokenStyle.Render(fmt.Sprintf("%-6s", d.Token)),
			d.Wallet,
			SubtextStyle.Render(d.Timestamp.Format("15:04:05")),
		))
	}

	if len(m.deposits) > maxVisible {
		sections = append(sections, SubtextStyle.Render(
			fmt.Sprintf("  Showing %d-%d of %d (j/k to scroll)", m.scrollOffset+1, end, len(m.deposits)),
		))
	}

	sections = append(sections, "")
	sections = append(sections, SubtextStyle.Render("  [t] threshold  [R] refresh  [j/k] scroll"))

	return strings.Join(sections, "\n")
}

// SetSize updates the model dimensions.
func (m *WhaleListModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// DepositCount returns the number of loaded deposits (for testing).
func (m WhaleListModel) DepositCount() int { return len(m.deposits) }

// ThresholdIndex returns the active threshold option (for testing).
func (m WhaleListModel) ThresholdIndex() int { return m.thresholdIdx }

func (m WhaleListModel) threshold() float64 {
	if m.thresholdIdx == 0 && m.services.ThresholdUSD > 0 {
		return m.services.ThresholdUSD
	}
	return thresholdOptions[m.thresholdIdx]
}

func (m WhaleListModel) renderThresholdChips() string {
	var parts []string
	parts = append(parts, SubtextStyle.Render("Threshold: "))
	for i, opt := range thresholdOptions {
		display := domain.FormatUSD(opt)
		if i == 0 && m.services.ThresholdUSD > 0 {
			display = domain.FormatUSD(m.services.ThresholdUSD)
		}
		if i == m.thresholdIdx {
			parts = append(parts, ActiveTabStyle.Render(display))
		} else {
			parts = append(parts, SubtextStyle.Render(display))
		}
		parts = append(parts, " ")
	}
	return "  " + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m WhaleListModel) fetchWhalesCmd() tea.Cmd {
	threshold := m.threshold()
	lookback := m.services.LookbackMinutes
	return func() tea.Msg {
		if m.services.Whales == nil {
			return whalesErrMsg{err: fmt.Errorf("detection service not available")}
		}
		deposits, err := m.services.Whales.Detect(context.Background(), threshold, lookback)
		if err != nil {
			return whalesErrMsg{err: err}
		}
		return whalesMsg(deposits)
	}
}

func (m WhaleListModel) visibleRows() int {
	// Account for header, threshold chips, table header, help footer
	available := m.height - 9
	if available < 5 {
		return 5
	}
	return available
}
