package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubWhaleService struct {
	deposits []domain.DepositEvent
	err      error

	lastThreshold float64
	lastLookback  int
}

func (s *stubWhaleService) Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error) {
	s.lastThreshold = thresholdUSD
	s.lastLookback = lookbackMinutes
	if s.err != nil {
		return []domain.DepositEvent{}, s.err
	}
	return append([]domain.DepositEvent(nil), s.deposits...), nil
}

type stubWalletService struct {
	lastWallet string
}

func (s *stubWalletService) Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet {
	s.lastWallet = wallet
	return &domain.EnrichedWallet{
		Address: wallet,
		Positions: []domain.Position{
			{Coin: "ETH", Side: domain.SideLong, NotionalUSD: 250_000, AvgEntryPrice: 2500},
		},
		RecentFills:      []domain.Fill{},
		TotalNotionalUSD: 250_000,
	}
}

type stubResolver struct {
	outcome  domain.ResolutionOutcome
	statuses []domain.ChannelStatus

	lastMessage string
	lastPref    domain.ChannelPreference
}

func (s *stubResolver) Resolve(ctx context.Context, message string, pref domain.ChannelPreference) domain.ResolutionOutcome {
	s.lastMessage = message
	s.lastPref = pref
	return s.outcome
}

func (s *stubResolver) ChannelStatuses(ctx context.Context) []domain.ChannelStatus {
	return append([]domain.ChannelStatus(nil), s.statuses...)
}

func testServer() (*sdkmcp.Server, *stubWhaleService, *stubWalletService, *stubResolver) {
	whales := &stubWhaleService{
		deposits: []domain.DepositEvent{{
			Wallet:    "0x1111111111111111111111111111111111111111",
			Amount:    12_000_000,
			Token:     domain.TokenUSDC,
			TxHash:    "0xbig",
			Timestamp: time.Unix(0, 0).UTC(),
			AmountUSD: 12_000_000,
		}},
	}
	wallets := &stubWalletService{}
	resolver := &stubResolver{
		outcome: domain.ResolutionOutcome{
			Success:  true,
			Response: "2 whales in the last 15 minutes",
			Channel:  domain.ChannelMock,
		},
		statuses: []domain.ChannelStatus{
			{Channel: domain.ChannelLocal, Configured: true, Reachable: true},
			{Channel: domain.ChannelMock, Configured: true, Reachable: true},
			{Channel: domain.ChannelRemote, Configured: false},
		},
	}

	srv := NewServer(nil, whales, wallets, resolver, ServerConfig{RequestTimeout: time.Second})
	return srv, whales, wallets, resolver
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
