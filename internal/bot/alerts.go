package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type messageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// AlertDispatcher broadcasts newly-detected whale deposits to subscribed chats.
type AlertDispatcher struct {
	sender messageSender

	mu          sync.RWMutex
	subscribers map[int64]struct{}
}

func NewAlertDispatcher(sender messageSender) *AlertDispatcher {
	return &AlertDispatcher{
		sender:      sender,
		subscribers: make(map[int64]struct{}),
	}
}

// Subscribe reports whether the chat was newly added.
func (d *AlertDispatcher) Subscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	before := len(d.subscribers)
	d.subscribers[chatID] = struct{}{}
	return len(d.subscribers) != before
}

// Unsubscribe reports whether the chat had been subscribed.
func (d *AlertDispatcher) Unsubscribe(chatID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, existed := d.subscribers[chatID]
	delete(d.subscribers, chatID)
	return existed
}

func (d *AlertDispatcher) IsSubscribed(chatID int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.subscribers[chatID]
	return ok
}

func (d *AlertDispatcher) SubscriberCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers)
}

// NotifyDeposits sends one aggregated message per subscriber. A nil
// dispatcher (bot disabled) is a no-op, so the poller can hold one
// unconditionally.
func (d *AlertDispatcher) NotifyDeposits(ctx context.Context, deposits []domain.DepositEvent) error {
	_ = ctx
	if d == nil || d.sender == nil || len(deposits) == 0 {
		return nil
	}

	msg := formatAlertMessage(deposits)
	var errs []error
	for _, chatID := range d.snapshotSubscribers() {
		if _, err := d.sender.Send(&tele.Chat{ID: chatID}, msg); err != nil {
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

// snapshotSubscribers returns chat IDs in ascending order so delivery order
// is stable.
func (d *AlertDispatcher) snapshotSubscribers() []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	chatIDs := make([]int64, 0, len(d.subscribers))
	for chatID := range d.subscribers {
		chatIDs = append(chatIDs, chatID)
	}
	slices.Sort(chatIDs)
	return chatIDs
}

func parseAlertMode(args []string) (string, error) {
	if len(args) == 0 {
		return "status", nil
	}
	mode := strings.ToLower(strings.TrimSpace(args[0]))
	switch mode {
	case "on", "off", "status":
		return mode, nil
	}
	return "", fmt.Errorf("invalid mode")
}

func formatAlertMessage(deposits []domain.DepositEvent) string {
	var b strings.Builder
	b.WriteString("Whale deposit alert:")
	for _, d := range deposits {
		b.WriteString("\n")
		b.WriteString(formatDeposit(d))
	}
	return b.String()
}

func formatDeposit(d domain.DepositEvent) string {
	return fmt.Sprintf(
		"%s %s from %s at %s (tx %s)",
		domain.FormatUSD(d.AmountUSD),
		d.Token,
		d.Wallet,
		d.Timestamp.UTC().Format(time.RFC822),
		d.TxHash,
	)
}
