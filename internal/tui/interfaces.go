package tui

import (
	"context"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
)

// WhaleQuerier provides bridge deposit scans to the TUI.
type WhaleQuerier interface {
	Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error)
}

// ChatQuerier routes chat messages through the channel chain.
type ChatQuerier interface {
	Resolve(ctx context.Context, message string, pref domain.ChannelPreference) domain.ResolutionOutcome
	ChannelStatuses(ctx context.Context) []domain.ChannelStatus
}

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Chat   ChatQuerier
	Whales WhaleQuerier

	ThresholdUSD    float64
	LookbackMinutes int
	PreferLocal     bool
}

// Preference returns the channel preference for chat resolution.
func (s Services) Preference() domain.ChannelPreference {
	if s.PreferLocal {
		return domain.PreferLocal
	}
	return domain.PreferRemote
}
