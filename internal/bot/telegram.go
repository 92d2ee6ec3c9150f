package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	tele "gopkg.in/telebot.v3"
)

type WhaleQuerier interface {
	Detect(ctx context.Context, thresholdUSD float64, lookbackMinutes int) ([]domain.DepositEvent, error)
}

type WalletQuerier interface {
	Enrich(ctx context.Context, wallet string) *domain.EnrichedWallet
}

type ChatResolver interface {
	Resolve(ctx context.Context, message string, pref domain.ChannelPreference) domain.ResolutionOutcome
	ChannelStatuses(ctx context.Context) []domain.ChannelStatus
}

func StartTelegramBot(whaleService WhaleQuerier, walletService WalletQuerier, resolver ChatResolver, thresholdUSD float64, lookbackMinutes int) *AlertDispatcher {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/whales", func(c tele.Context) error {
		threshold := thresholdUSD
		if args := c.Args(); len(args) > 0 {
			v, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
			if err != nil || v <= 0 {
				return c.Send("Usage: /whales [threshold_usd]\nExample: /whales 5000000")
			}
			threshold = v
		}

		deposits, err := whaleService.Detect(context.Background(), threshold, lookbackMinutes)
		if err != nil {
			return c.Send(fmt.Sprintf("Error scanning bridge deposits: %v", err))
		}
		if len(deposits) == 0 {
			return c.Send(fmt.Sprintf("No deposits above %s in the last %d minutes.",
				domain.FormatUSD(threshold), lookbackMinutes))
		}

		lines := []string{fmt.Sprintf("%d whale deposit(s) in the last %d minutes:", len(deposits), lookbackMinutes)}
		for _, d := range deposits {
			lines = append(lines, formatDeposit(d))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/wallet", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 || !common.IsHexAddress(args[0]) {
			return c.Send("Usage: /wallet 0x<address>")
		}
		wallet := walletService.Enrich(context.Background(), args[0])
		return c.Send(formatWallet(wallet))
	})

	b.Handle("/status", func(c tele.Context) error {
		statuses := resolver.ChannelStatuses(context.Background())
		lines := []string{"Response channels:"}
		for _, s := range statuses {
			state := "not configured"
			if s.Configured && s.Reachable {
				state = "ready"
			} else if s.Configured {
				state = "configured, unreachable"
			}
			lines = append(lines, fmt.Sprintf("- %s: %s", s.Channel, state))
		}
		return c.Send(strings.Join(lines, "\n"))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		mode, err := parseAlertMode(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on | /alerts off | /alerts status")
		}

		switch mode {
		case "on":
			if alerts.Subscribe(chat.ID) {
				return c.Send("Whale deposit alerts enabled for this chat.")
			}
			return c.Send("Whale deposit alerts are already enabled for this chat.")
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Whale deposit alerts disabled for this chat.")
			}
			return c.Send("Whale deposit alerts are already disabled for this chat.")
		default:
			if alerts.IsSubscribed(chat.ID) {
				return c.Send("Alerts status: ON")
			}
			return c.Send("Alerts status: OFF")
		}
	})

	b.Handle(tele.OnText, func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		if text == "" {
			return nil
		}
		return handleChatQuery(c, resolver, text)
	})

	log.Println("Telegram bot started")
	go b.Start()
	return alerts
}

func handleChatQuery(c tele.Context, resolver ChatResolver, message string) error {
	_ = c.Notify(tele.Typing)

	outcome := resolver.Resolve(context.Background(), message, domain.PreferLocal)
	if !outcome.Success {
		log.Printf("chat resolution failed for chat %d: %s", c.Chat().ID, outcome.ErrorKind)
		return c.Send("Sorry, no response channel is available right now. Try /whales or /wallet for raw data.")
	}

	reply := outcome.Response
	if len(reply) > 4000 {
		reply = reply[:4000] + "\n\n[truncated]"
	}
	return c.Send(reply)
}

func formatWallet(w *domain.EnrichedWallet) string {
	if len(w.Positions) == 0 && len(w.RecentFills) == 0 {
		return fmt.Sprintf("No open positions or recent fills found for %s.", w.Address)
	}

	lines := []string{fmt.Sprintf("Wallet %s\nTotal open notional: %s", w.Address, domain.FormatUSD(w.TotalNotionalUSD))}
	for _, p := range w.Positions {
		line := fmt.Sprintf("%s %s %s at entry $%.2f",
			strings.ToUpper(p.Side), p.Coin, domain.FormatUSD(p.NotionalUSD), p.AvgEntryPrice)
		if p.LiquidationPrice != nil {
			line += fmt.Sprintf(" (liq $%.2f)", *p.LiquidationPrice)
		}
		lines = append(lines, line)
	}
	if len(w.RecentFills) > 0 {
		lines = append(lines, fmt.Sprintf("Recent fills (%d):", len(w.RecentFills)))
		for _, f := range w.RecentFills {
			lines = append(lines, fmt.Sprintf("%s %.4f %s at $%.2f",
				strings.ToUpper(f.Action), f.Size, f.Coin, f.Price))
		}
	}
	return strings.Join(lines, "\n")
}
