package channel

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubDetector struct {
	deposits []domain.DepositEvent
	err      error
	calls    int
}

func (s *stubDetector) Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error) {
	s.calls++
	if s.err != nil {
		return []domain.DepositEvent{}, s.err
	}
	return s.deposits, nil
}

type stubEnricher struct {
	wallet *domain.EnrichedWallet
	calls  int
	lastIn string
}

func (s *stubEnricher) Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet {
	s.calls++
	s.lastIn = wallet
	if s.wallet != nil {
		return s.wallet
	}
	return &domain.EnrichedWallet{
		Address:     wallet,
		Positions:   []domain.Position{},
		RecentFills: []domain.Fill{},
	}
}

func newTestMockAgent(detector *stubDetector, enricher *stubEnricher) *MockAgent {
	tracer := trace.NewNoopTracerProvider().Tracer("channel-test")
	return NewMockAgent(tracer, detector, enricher, 10_000_000, 15)
}

func TestMockAgentIdentity(t *testing.T) {
	a := newTestMockAgent(&stubDetector{}, &stubEnricher{})
	if a.ID() != domain.ChannelMock {
		t.Fatalf("unexpected id: %s", a.ID())
	}
	if !a.Configured() {
		t.Fatal("mock agent must always be configured")
	}
	status := a.Status(context.Background())
	if !status.Configured || !status.Reachable {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestMockAgentWhaleIntent(t *testing.T) {
	detector := &stubDetector{deposits: []domain.DepositEvent{
		{
			Wallet: "0x1111111111111111111111111111111111111111",
			Token:  domain.TokenUSDC, AmountUSD: 12_000_000, Amount: 12_000_000,
			TxHash: "0xabc123abc123", Timestamp: time.Now().UTC(),
		},
	}}
	a := newTestMockAgent(detector, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "Any WHALE activity lately?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detector.calls != 1 {
		t.Fatalf("expected one detect call, got %d", detector.calls)
	}
	if !strings.Contains(reply, "$12.00M") || !strings.Contains(reply, domain.TokenUSDC) {
		t.Fatalf("reply missing deposit details: %q", reply)
	}
}

func TestMockAgentWhaleIntentEmpty(t *testing.T) {
	a := newTestMockAgent(&stubDetector{}, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "show me alerts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "No deposits above $10.00M") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestMockAgentDegradedWhenSourceDown(t *testing.T) {
	detector := &stubDetector{err: domain.ErrDataSourceUnavailable}
	a := newTestMockAgent(detector, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "whales?")
	if err != nil {
		t.Fatalf("mock agent must not fail when the source is down: %v", err)
	}
	if !strings.Contains(reply, "can't reach the bridge data source") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	reply, err = a.Respond(context.Background(), "status")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "degraded") {
		t.Fatalf("status should mention degradation: %q", reply)
	}
}

func TestMockAgentStatusIntent(t *testing.T) {
	a := newTestMockAgent(&stubDetector{}, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "What's your STATUS?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "online") || !strings.Contains(reply, "$10.00M") {
		t.Fatalf("unexpected status reply: %q", reply)
	}
}

func TestMockAgentWalletIntent(t *testing.T) {
	liq := 2100.0
	enricher := &stubEnricher{wallet: &domain.EnrichedWallet{
		Address: "0x2222222222222222222222222222222222222222",
		Positions: []domain.Position{
			{Coin: "ETH", Side: domain.SideLong, NotionalUSD: 250_000, AvgEntryPrice: 2500, LiquidationPrice: &liq},
		},
		RecentFills: []domain.Fill{
			{Coin: "ETH", Action: domain.ActionBuy, Size: 10, Price: 2500, NotionalUSD: 25_000},
		},
		TotalNotionalUSD: 250_000,
	}}
	a := newTestMockAgent(&stubDetector{}, enricher)

	reply, err := a.Respond(context.Background(),
		"look at 0x2222222222222222222222222222222222222222 please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enricher.lastIn != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("enricher got wrong wallet: %s", enricher.lastIn)
	}
	if !strings.Contains(reply, "long ETH") || !strings.Contains(reply, "$250.0K") || !strings.Contains(reply, "liq $2100.00") {
		t.Fatalf("reply missing position details: %q", reply)
	}
	if !strings.Contains(reply, "buy") {
		t.Fatalf("reply missing fills: %q", reply)
	}
}

func TestMockAgentWalletIntentEmptyProfile(t *testing.T) {
	enricher := &stubEnricher{}
	a := newTestMockAgent(&stubDetector{}, enricher)

	reply, err := a.Respond(context.Background(), "0x3333333333333333333333333333333333333333")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "No open positions") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestMockAgentWalletWinsOverKeywords(t *testing.T) {
	detector := &stubDetector{}
	enricher := &stubEnricher{}
	a := newTestMockAgent(detector, enricher)

	_, err := a.Respond(context.Background(),
		"whale status for 0x4444444444444444444444444444444444444444")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enricher.calls != 1 || detector.calls != 0 {
		t.Fatalf("wallet address should win over keywords: enricher=%d detector=%d", enricher.calls, detector.calls)
	}
}

func TestMockAgentHelpAndDefault(t *testing.T) {
	a := newTestMockAgent(&stubDetector{}, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "HELP me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "wallet address") {
		t.Fatalf("unexpected help reply: %q", reply)
	}

	reply, err = a.Respond(context.Background(), "what is the weather")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "help") {
		t.Fatalf("default reply should point to help: %q", reply)
	}
}

func TestMockAgentOtherDetectorErrors(t *testing.T) {
	detector := &stubDetector{err: errors.New("boom")}
	a := newTestMockAgent(detector, &stubEnricher{})

	reply, err := a.Respond(context.Background(), "whales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "No deposits") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}
