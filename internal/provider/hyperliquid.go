package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const hyperliquidRequestTimeout = 10 * time.Second

// HyperliquidProvider queries the Hyperliquid info API for per-wallet
// clearinghouse state and fill history.
type HyperliquidProvider struct {
	tracer  trace.Tracer
	infoURL string
	client  *http.Client
}

func NewHyperliquidProvider(tracer trace.Tracer, infoURL string) *HyperliquidProvider {
	return &HyperliquidProvider{
		tracer:  tracer,
		infoURL: infoURL,
		client:  &http.Client{Timeout: hyperliquidRequestTimeout},
	}
}

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type clearinghouseResponse struct {
	AssetPositions []struct {
		Position struct {
			Coin          string  `json:"coin"`
			SignedSize    string  `json:"szi"`
			EntryPrice    *string `json:"entryPx"`
			LiquidationPx *string `json:"liquidationPx"`
		} `json:"position"`
	} `json:"assetPositions"`
}

type fillEntry struct {
	Coin   string `json:"coin"`
	Price  string `json:"px"`
	Size   string `json:"sz"`
	Side   string `json:"side"`
	TimeMs int64  `json:"time"`
}

// Positions returns the wallet's clearinghouse positions. Entries whose
// numeric fields do not parse are dropped.
func (p *HyperliquidProvider) Positions(ctx context.Context, wallet string) ([]domain.PerpPosition, error) {
	ctx, span := p.tracer.Start(ctx, "hyperliquid.positions")
	defer span.End()
	span.SetAttributes(attribute.String("wallet", wallet))

	var payload clearinghouseResponse
	if err := p.post(ctx, infoRequest{Type: "clearinghouseState", User: wallet}, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.PerpPosition, 0, len(payload.AssetPositions))
	for _, entry := range payload.AssetPositions {
		pos := entry.Position
		szi, err := strconv.ParseFloat(pos.SignedSize, 64)
		if err != nil {
			continue
		}
		entryPx := 0.0
		if pos.EntryPrice != nil {
			entryPx, err = strconv.ParseFloat(*pos.EntryPrice, 64)
			if err != nil {
				continue
			}
		}
		perp := domain.PerpPosition{
			Coin:       pos.Coin,
			SignedSize: szi,
			EntryPrice: entryPx,
		}
		if pos.LiquidationPx != nil {
			if liq, err := strconv.ParseFloat(*pos.LiquidationPx, 64); err == nil {
				perp.LiquidationPrice = &liq
			}
		}
		out = append(out, perp)
	}
	return out, nil
}

// Fills returns the wallet's recent fills, most recent first. Asks are
// recorded with negative size so the sign carries the trade direction.
func (p *HyperliquidProvider) Fills(ctx context.Context, wallet string) ([]domain.PerpFill, error) {
	ctx, span := p.tracer.Start(ctx, "hyperliquid.fills")
	defer span.End()
	span.SetAttributes(attribute.String("wallet", wallet))

	var payload []fillEntry
	if err := p.post(ctx, infoRequest{Type: "userFills", User: wallet}, &payload); err != nil {
		return nil, err
	}

	out := make([]domain.PerpFill, 0, len(payload))
	for _, entry := range payload {
		size, err := strconv.ParseFloat(entry.Size, 64)
		if err != nil {
			continue
		}
		price, err := strconv.ParseFloat(entry.Price, 64)
		if err != nil {
			continue
		}
		if entry.Side == "A" && size > 0 {
			size = -size
		}
		out = append(out, domain.PerpFill{
			Coin:  entry.Coin,
			Size:  size,
			Price: price,
			Time:  time.UnixMilli(entry.TimeMs).UTC(),
		})
	}
	return out, nil
}

func (p *HyperliquidProvider) post(ctx context.Context, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode info request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.infoURL, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build info request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("hyperliquid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hyperliquid returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode hyperliquid response: %w", err)
	}
	return nil
}
