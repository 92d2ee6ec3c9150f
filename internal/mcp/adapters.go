package mcp

import (
	"context"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
)

// WhaleReader exposes the bridge deposit scan.
type WhaleReader interface {
	Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error)
}

// WalletReader exposes wallet enrichment.
type WalletReader interface {
	Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet
}

// ChatResolver routes a chat message through the channel chain.
type ChatResolver interface {
	Resolve(ctx context.Context, message string, pref domain.ChannelPreference) domain.ResolutionOutcome
	ChannelStatuses(ctx context.Context) []domain.ChannelStatus
}
