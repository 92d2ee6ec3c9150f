package job

import (
	"context"
	"log"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const seenTxCap = 100

// WhaleDetector runs a threshold scan over recent bridge deposits.
type WhaleDetector interface {
	Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error)
}

// DepositNotifier fans detected deposits out to alert subscribers.
type DepositNotifier interface {
	NotifyDeposits(ctx context.Context, deposits []domain.DepositEvent) error
}

// WhalePoller periodically scans the bridge for whale deposits and pushes
// unseen ones to the notifier. Seen transaction hashes are kept in a bounded
// in-memory set so restarts may re-announce recent deposits.
type WhalePoller struct {
	tracer   trace.Tracer
	detector WhaleDetector
	notifier DepositNotifier

	thresholdUSD    float64
	lookbackMinutes int
	interval        time.Duration

	seen      map[string]struct{}
	seenOrder []string
}

func NewWhalePoller(tracer trace.Tracer, detector WhaleDetector, notifier DepositNotifier, thresholdUSD float64, lookbackMinutes, pollSecs int) *WhalePoller {
	if pollSecs <= 0 {
		pollSecs = 30
	}
	return &WhalePoller{
		tracer:          tracer,
		detector:        detector,
		notifier:        notifier,
		thresholdUSD:    thresholdUSD,
		lookbackMinutes: lookbackMinutes,
		interval:        time.Duration(pollSecs) * time.Second,
		seen:            make(map[string]struct{}),
	}
}

// Start scans immediately, then on every tick. Blocks until ctx is cancelled.
func (p *WhalePoller) Start(ctx context.Context) {
	if p.detector == nil {
		log.Println("Whale poller disabled: no detector")
		<-ctx.Done()
		return
	}

	log.Println("Whale poller starting...")
	p.scan(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Whale poller stopped")
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

func (p *WhalePoller) scan(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "whale-poller.scan")
	defer span.End()

	deposits, err := p.detector.Detect(ctx, p.thresholdUSD, p.lookbackMinutes)
	if err != nil {
		log.Printf("whale scan error: %v", err)
		span.RecordError(err)
		return
	}

	fresh := p.markFresh(deposits)
	if len(fresh) == 0 {
		return
	}
	log.Printf("whale poller: %d new deposit(s) above %s", len(fresh), domain.FormatUSD(p.thresholdUSD))

	if p.notifier == nil {
		return
	}
	if err := p.notifier.NotifyDeposits(ctx, fresh); err != nil {
		log.Printf("whale alert dispatch error: %v", err)
		span.RecordError(err)
	}
}

// markFresh filters out already-announced deposits and records the rest,
// evicting the oldest hashes once the set exceeds its cap.
func (p *WhalePoller) markFresh(deposits []domain.DepositEvent) []domain.DepositEvent {
	var fresh []domain.DepositEvent
	for _, d := range deposits {
		if _, ok := p.seen[d.TxHash]; ok {
			continue
		}
		p.seen[d.TxHash] = struct{}{}
		p.seenOrder = append(p.seenOrder, d.TxHash)
		fresh = append(fresh, d)
	}

	for len(p.seenOrder) > seenTxCap {
		oldest := p.seenOrder[0]
		p.seenOrder = p.seenOrder[1:]
		delete(p.seen, oldest)
	}
	return fresh
}
