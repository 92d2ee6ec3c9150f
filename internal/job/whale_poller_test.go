package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type stubWhaleDetector struct {
	mu       sync.Mutex
	deposits []domain.DepositEvent
	err      error
	calls    int
}

func (s *stubWhaleDetector) Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return []domain.DepositEvent{}, s.err
	}
	return append([]domain.DepositEvent(nil), s.deposits...), nil
}

func (s *stubWhaleDetector) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubNotifier struct {
	mu      sync.Mutex
	batches [][]domain.DepositEvent
}

func (s *stubNotifier) NotifyDeposits(ctx context.Context, deposits []domain.DepositEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, deposits)
	return nil
}

func newTestPoller(detector *stubWhaleDetector, notifier *stubNotifier) *WhalePoller {
	tracer := trace.NewNoopTracerProvider().Tracer("job-test")
	var n DepositNotifier
	if notifier != nil {
		n = notifier
	}
	return NewWhalePoller(tracer, detector, n, 10_000_000, 15, 30)
}

func deposit(hash string) domain.DepositEvent {
	return domain.DepositEvent{
		Wallet: "0xWhale", Token: domain.TokenUSDC,
		TxHash: hash, AmountUSD: 12_000_000,
		Timestamp: time.Now().UTC(),
	}
}

func TestWhalePollerStart(t *testing.T) {
	t.Parallel()

	detector := &stubWhaleDetector{}
	poller := newTestPoller(detector, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go poller.Start(ctx)

	eventually(t, func() bool { return detector.callCount() > 0 })
	cancel()
}

func TestWhalePollerNotifiesFreshDepositsOnce(t *testing.T) {
	detector := &stubWhaleDetector{deposits: []domain.DepositEvent{deposit("0xa"), deposit("0xb")}}
	notifier := &stubNotifier{}
	poller := newTestPoller(detector, notifier)

	poller.scan(context.Background())
	poller.scan(context.Background())

	if len(notifier.batches) != 1 {
		t.Fatalf("expected one alert batch, got %d", len(notifier.batches))
	}
	if len(notifier.batches[0]) != 2 {
		t.Fatalf("expected 2 deposits in batch, got %+v", notifier.batches[0])
	}
}

func TestWhalePollerNotifiesOnlyNewDeposits(t *testing.T) {
	detector := &stubWhaleDetector{deposits: []domain.DepositEvent{deposit("0xa")}}
	notifier := &stubNotifier{}
	poller := newTestPoller(detector, notifier)

	poller.scan(context.Background())

	detector.mu.Lock()
	detector.deposits = append(detector.deposits, deposit("0xb"))
	detector.mu.Unlock()
	poller.scan(context.Background())

	if len(notifier.batches) != 2 {
		t.Fatalf("expected two alert batches, got %d", len(notifier.batches))
	}
	second := notifier.batches[1]
	if len(second) != 1 || second[0].TxHash != "0xb" {
		t.Fatalf("expected only the new deposit, got %+v", second)
	}
}

func TestWhalePollerSwallowsDetectorErrors(t *testing.T) {
	detector := &stubWhaleDetector{err: errors.New("source down")}
	notifier := &stubNotifier{}
	poller := newTestPoller(detector, notifier)

	poller.scan(context.Background())
	if len(notifier.batches) != 0 {
		t.Fatalf("no alerts expected on detector error, got %+v", notifier.batches)
	}
}

func TestWhalePollerSeenSetBounded(t *testing.T) {
	poller := newTestPoller(&stubWhaleDetector{}, nil)

	var deposits []domain.DepositEvent
	for i := 0; i < seenTxCap+20; i++ {
		deposits = append(deposits, deposit(fmt.Sprintf("0x%04d", i)))
	}
	fresh := poller.markFresh(deposits)
	if len(fresh) != seenTxCap+20 {
		t.Fatalf("all deposits should be fresh on first pass, got %d", len(fresh))
	}
	if len(poller.seen) != seenTxCap || len(poller.seenOrder) != seenTxCap {
		t.Fatalf("seen set not bounded: map=%d order=%d", len(poller.seen), len(poller.seenOrder))
	}

	// The oldest hashes were evicted, so they count as fresh again.
	fresh = poller.markFresh([]domain.DepositEvent{deposit("0x0000")})
	if len(fresh) != 1 {
		t.Fatalf("evicted hash should be fresh again, got %d", len(fresh))
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}
