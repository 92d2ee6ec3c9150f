package service

import (
	"context"
	"log"
	"math"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxRecentFills = 10

// PerpsDataSource fetches per-wallet trading data.
type PerpsDataSource interface {
	Positions(ctx context.Context, wallet string) ([]domain.PerpPosition, error)
	Fills(ctx context.Context, wallet string) ([]domain.PerpFill, error)
}

// EnrichmentService merges positions and recent fills for one wallet.
type EnrichmentService struct {
	tracer trace.Tracer
	source PerpsDataSource
}

func NewEnrichmentService(tracer trace.Tracer, source PerpsDataSource) *EnrichmentService {
	return &EnrichmentService{tracer: tracer, source: source}
}

// Enrich is best effort and never fails: any fetch error yields an empty
// EnrichedWallet with a zero total. Positions and fills are fetched
// concurrently and joined before the result is assembled.
func (s *EnrichmentService) Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet {
	ctx, span := s.tracer.Start(ctx, "enrichment-service.enrich")
	defer span.End()
	span.SetAttributes(attribute.String("wallet", wallet))

	out := &domain.EnrichedWallet{
		Address:     wallet,
		Positions:   []domain.Position{},
		RecentFills: []domain.Fill{},
	}

	type positionsResult struct {
		positions []domain.PerpPosition
		err       error
	}
	type fillsResult struct {
		fills []domain.PerpFill
		err   error
	}

	positionsCh := make(chan positionsResult, 1)
	fillsCh := make(chan fillsResult, 1)
	go func() {
		positions, err := s.source.Positions(ctx, wallet)
		positionsCh <- positionsResult{positions, err}
	}()
	go func() {
		fills, err := s.source.Fills(ctx, wallet)
		fillsCh <- fillsResult{fills, err}
	}()

	posRes := <-positionsCh
	fillRes := <-fillsCh
	if posRes.err != nil || fillRes.err != nil {
		log.Printf("wallet enrichment degraded for %s: positions=%v fills=%v", wallet, posRes.err, fillRes.err)
		return out
	}

	for _, p := range posRes.positions {
		if p.SignedSize == 0 {
			continue
		}
		side := domain.SideLong
		if p.SignedSize < 0 {
			side = domain.SideShort
		}
		notional := math.Abs(p.SignedSize * p.EntryPrice)
		out.Positions = append(out.Positions, domain.Position{
			Coin:             p.Coin,
			Side:             side,
			NotionalUSD:      notional,
			AvgEntryPrice:    p.EntryPrice,
			LiquidationPrice: p.LiquidationPrice,
		})
		out.TotalNotionalUSD += notional
	}

	for _, f := range fillRes.fills {
		if len(out.RecentFills) >= maxRecentFills {
			break
		}
		action := domain.ActionBuy
		if f.Size < 0 {
			action = domain.ActionSell
		}
		out.RecentFills = append(out.RecentFills, domain.Fill{
			Coin:        f.Coin,
			Action:      action,
			Size:        math.Abs(f.Size),
			Price:       f.Price,
			NotionalUSD: math.Abs(f.Size * f.Price),
			Timestamp:   f.Time,
		})
	}

	return out
}
