package bot

import (
	"strings"
	"testing"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil, nil, nil, 10_000_000, 15)
}

func TestFormatDeposit(t *testing.T) {
	got := formatDeposit(domain.DepositEvent{
		Wallet:    "0x1111111111111111111111111111111111111111",
		Token:     domain.TokenUSDC,
		TxHash:    "0xabc",
		AmountUSD: 12_000_000,
	})
	if !strings.Contains(got, "$12.00M USDC") || !strings.Contains(got, "0xabc") {
		t.Fatalf("unexpected deposit line: %s", got)
	}
}

func TestFormatWallet(t *testing.T) {
	liq := 2100.0
	got := formatWallet(&domain.EnrichedWallet{
		Address: "0x2222222222222222222222222222222222222222",
		Positions: []domain.Position{
			{Coin: "ETH", Side: domain.SideLong, NotionalUSD: 250_000, AvgEntryPrice: 2500, LiquidationPrice: &liq},
		},
		RecentFills: []domain.Fill{
			{Coin: "ETH", Action: domain.ActionBuy, Size: 10, Price: 2500},
		},
		TotalNotionalUSD: 250_000,
	})
	if !strings.Contains(got, "LONG ETH $250.0K") {
		t.Fatalf("missing position line: %s", got)
	}
	if !strings.Contains(got, "liq $2100.00") {
		t.Fatalf("missing liquidation price: %s", got)
	}
	if !strings.Contains(got, "BUY 10.0000 ETH") {
		t.Fatalf("missing fill line: %s", got)
	}
}

func TestFormatWalletEmpty(t *testing.T) {
	got := formatWallet(&domain.EnrichedWallet{Address: "0x3333333333333333333333333333333333333333"})
	if !strings.Contains(got, "No open positions") {
		t.Fatalf("unexpected empty wallet text: %s", got)
	}
}
