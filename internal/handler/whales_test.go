package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
	"github.com/xyd945/hyperliquid-whale-agent/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

const testBridge = "0x2Df1c51E09aECF9cacB7bc98cB1742757f163dF7"

type stubBridgeSource struct {
	txs []domain.BridgeTransaction
	err error
}

func (s *stubBridgeSource) AddressTransactions(ctx context.Context, address string) ([]domain.BridgeTransaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.txs, nil
}

type stubPerpsSource struct {
	positions []domain.PerpPosition
	fills     []domain.PerpFill
}

func (s *stubPerpsSource) Positions(ctx context.Context, wallet string) ([]domain.PerpPosition, error) {
	return s.positions, nil
}

func (s *stubPerpsSource) Fills(ctx context.Context, wallet string) ([]domain.PerpFill, error) {
	return s.fills, nil
}

func newWhaleRouter(bridge *stubBridgeSource, perps *stubPerpsSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	detection := service.NewDetectionService(tracer, bridge, testBridge, domain.TokenTable(2500), nil, time.Second)
	enrichment := service.NewEnrichmentService(tracer, perps)
	h := New(tracer, nil, detection, enrichment, true, 10_000_000, 15)

	r := gin.New()
	r.GET("/api/whales", h.GetWhales)
	r.GET("/api/wallets/:address", h.GetWallet)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetWhales(t *testing.T) {
	now := time.Now().UTC()
	bridge := &stubBridgeSource{txs: []domain.BridgeTransaction{{
		Hash: "0xbig", From: "0xWhale", To: testBridge,
		ValueWei:  "0",
		Timestamp: now.Add(-2 * time.Minute),
		TokenTransfers: []domain.TokenTransfer{{
			TokenAddress: domain.USDCAddress,
			From:         "0xWhale", To: testBridge,
			RawAmount: "12000000000000",
		}},
	}}}
	r := newWhaleRouter(bridge, &stubPerpsSource{})

	w := get(t, r, "/api/whales")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Whales          []domain.DepositEvent `json:"whales"`
		Count           int                   `json:"count"`
		ThresholdUSD    float64               `json:"threshold_usd"`
		LookbackMinutes int                   `json:"lookback_minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 1 || len(resp.Whales) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Whales[0].AmountUSD != 12_000_000 || resp.Whales[0].Token != domain.TokenUSDC {
		t.Fatalf("unexpected whale: %+v", resp.Whales[0])
	}
	if resp.ThresholdUSD != 10_000_000 || resp.LookbackMinutes != 15 {
		t.Fatalf("unexpected defaults: %+v", resp)
	}
}

func TestGetWhalesQueryOverrides(t *testing.T) {
	r := newWhaleRouter(&stubBridgeSource{}, &stubPerpsSource{})

	w := get(t, r, "/api/whales?threshold_usd=5000000&lookback_minutes=60")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		ThresholdUSD    float64 `json:"threshold_usd"`
		LookbackMinutes int     `json:"lookback_minutes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.ThresholdUSD != 5_000_000 || resp.LookbackMinutes != 60 {
		t.Fatalf("unexpected overrides: %+v", resp)
	}
}

func TestGetWhalesBadQuery(t *testing.T) {
	r := newWhaleRouter(&stubBridgeSource{}, &stubPerpsSource{})

	for _, path := range []string{
		"/api/whales?threshold_usd=abc",
		"/api/whales?threshold_usd=-5",
		"/api/whales?lookback_minutes=abc",
		"/api/whales?lookback_minutes=0",
		"/api/whales?lookback_minutes=2000",
	} {
		w := get(t, r, path)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestGetWhalesSourceDown(t *testing.T) {
	r := newWhaleRouter(&stubBridgeSource{err: errors.New("connection refused")}, &stubPerpsSource{})

	w := get(t, r, "/api/whales")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetWallet(t *testing.T) {
	perps := &stubPerpsSource{
		positions: []domain.PerpPosition{{Coin: "ETH", SignedSize: 100, EntryPrice: 2500}},
		fills:     []domain.PerpFill{{Coin: "ETH", Size: 10, Price: 2500, Time: time.Now().UTC()}},
	}
	r := newWhaleRouter(&stubBridgeSource{}, perps)

	w := get(t, r, "/api/wallets/0x2222222222222222222222222222222222222222")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var wallet domain.EnrichedWallet
	if err := json.Unmarshal(w.Body.Bytes(), &wallet); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if wallet.Address != "0x2222222222222222222222222222222222222222" {
		t.Fatalf("unexpected address: %s", wallet.Address)
	}
	if len(wallet.Positions) != 1 || wallet.TotalNotionalUSD != 250_000 {
		t.Fatalf("unexpected wallet: %+v", wallet)
	}
}

func TestGetWalletBadAddress(t *testing.T) {
	r := newWhaleRouter(&stubBridgeSource{}, &stubPerpsSource{})

	for _, path := range []string{
		"/api/wallets/nothex",
		"/api/wallets/0x1234",
	} {
		w := get(t, r, path)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", path, w.Code)
		}
	}
}
