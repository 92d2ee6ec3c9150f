package channel

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/trace"
)

// WhaleDetector runs a threshold scan over recent bridge deposits.
type WhaleDetector interface {
	Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error)
}

// WalletEnricher builds a trading profile for one wallet.
type WalletEnricher interface {
	Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet
}

var walletPattern = regexp.MustCompile(`0x[0-9a-fA-F]{40}`)

// MockAgent answers in-process by intent-matching the message and calling
// the real detection and enrichment adapters. It never touches the network
// itself and is always configured, which makes it the resolver's last
// local-capable resort.
type MockAgent struct {
	tracer          trace.Tracer
	detector        WhaleDetector
	enricher        WalletEnricher
	thresholdUSD    float64
	lookbackMinutes int
}

func NewMockAgent(tracer trace.Tracer, detector WhaleDetector, enricher WalletEnricher, thresholdUSD float64, lookbackMinutes int) *MockAgent {
	return &MockAgent{
		tracer:          tracer,
		detector:        detector,
		enricher:        enricher,
		thresholdUSD:    thresholdUSD,
		lookbackMinutes: lookbackMinutes,
	}
}

func (a *MockAgent) ID() domain.ChannelID { return domain.ChannelMock }

func (a *MockAgent) Configured() bool { return true }

func (a *MockAgent) Status(ctx context.Context) domain.ChannelStatus {
	return domain.ChannelStatus{
		Channel:    domain.ChannelMock,
		Configured: true,
		Reachable:  true,
		Endpoint:   "in-process",
	}
}

// Respond matches the message against known intents, case-insensitively.
// A wallet address anywhere in the message wins over keyword intents.
func (a *MockAgent) Respond(ctx context.Context, message string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "mock-agent.respond")
	defer span.End()

	if addr := walletPattern.FindString(message); addr != "" && common.IsHexAddress(addr) {
		return a.walletReport(ctx, addr), nil
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "status"):
		return a.statusReport(ctx), nil
	case strings.Contains(lower, "whale"), strings.Contains(lower, "alert"):
		return a.whaleReport(ctx), nil
	case strings.Contains(lower, "help"):
		return a.helpText(), nil
	default:
		return a.defaultText(), nil
	}
}

func (a *MockAgent) statusReport(ctx context.Context) string {
	deposits, err := a.detector.Detect(ctx, a.thresholdUSD, a.lookbackMinutes)
	var lines []string
	lines = append(lines, "Whale watch status: online")
	lines = append(lines, fmt.Sprintf("Alert threshold: %s, lookback window: %d minutes",
		domain.FormatUSD(a.thresholdUSD), a.lookbackMinutes))
	if errors.Is(err, domain.ErrDataSourceUnavailable) {
		lines = append(lines, "Bridge data source is currently unreachable, monitoring is degraded.")
	} else {
		lines = append(lines, fmt.Sprintf("Deposits above threshold in the current window: %d", len(deposits)))
	}
	return strings.Join(lines, "\n")
}

func (a *MockAgent) whaleReport(ctx context.Context) string {
	deposits, err := a.detector.Detect(ctx, a.thresholdUSD, a.lookbackMinutes)
	if errors.Is(err, domain.ErrDataSourceUnavailable) {
		return "I can't reach the bridge data source right now, so no whale activity can be confirmed. Try again shortly."
	}
	if err != nil || len(deposits) == 0 {
		return fmt.Sprintf("No deposits above %s in the last %d minutes.",
			domain.FormatUSD(a.thresholdUSD), a.lookbackMinutes)
	}

	lines := []string{fmt.Sprintf("%d whale deposit(s) in the last %d minutes:", len(deposits), a.lookbackMinutes)}
	for _, d := range deposits {
		lines = append(lines, fmt.Sprintf("- %s %s from %s (tx %s)",
			domain.FormatUSD(d.AmountUSD), d.Token, shortAddress(d.Wallet), shortHash(d.TxHash)))
	}
	return strings.Join(lines, "\n")
}

func (a *MockAgent) walletReport(ctx context.Context, wallet string) string {
	w := a.enricher.Enrich(ctx, wallet)
	if len(w.Positions) == 0 && len(w.RecentFills) == 0 {
		return fmt.Sprintf("No open positions or recent fills found for %s.", shortAddress(wallet))
	}

	lines := []string{fmt.Sprintf("Wallet %s, total open notional %s:",
		shortAddress(wallet), domain.FormatUSD(w.TotalNotionalUSD))}
	for _, p := range w.Positions {
		line := fmt.Sprintf("- %s %s, %s notional, entry $%.2f", p.Side, p.Coin, domain.FormatUSD(p.NotionalUSD), p.AvgEntryPrice)
		if p.LiquidationPrice != nil {
			line += fmt.Sprintf(", liq $%.2f", *p.LiquidationPrice)
		}
		lines = append(lines, line)
	}
	if len(w.RecentFills) > 0 {
		lines = append(lines, fmt.Sprintf("Recent fills (%d):", len(w.RecentFills)))
		for _, f := range w.RecentFills {
			lines = append(lines, fmt.Sprintf("- %s %.4f %s at $%.2f (%s)",
				f.Action, f.Size, f.Coin, f.Price, domain.FormatUSD(f.NotionalUSD)))
		}
	}
	return strings.Join(lines, "\n")
}

func (a *MockAgent) helpText() string {
	return strings.Join([]string{
		"I watch the Hyperliquid bridge for whale-sized deposits. Ask me:",
		"- \"status\" for monitoring state",
		"- \"whales\" or \"alerts\" for recent large deposits",
		"- paste a wallet address (0x...) for its positions and fills",
	}, "\n")
}

func (a *MockAgent) defaultText() string {
	return "I track large Hyperliquid bridge deposits. Say \"help\" to see what I can do."
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:10] + "..."
}
