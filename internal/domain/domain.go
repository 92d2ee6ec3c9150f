package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ChannelID identifies a response channel the agent can answer through.
type ChannelID string

const (
	ChannelMock   ChannelID = "mock"
	ChannelLocal  ChannelID = "local"
	ChannelRemote ChannelID = "remote"
)

// ChannelPreference selects which side of the channel list is tried first.
type ChannelPreference string

const (
	PreferLocal  ChannelPreference = "local"
	PreferRemote ChannelPreference = "remote"
)

// ErrorKind is the stable error classification exposed on API surfaces.
type ErrorKind string

const (
	ErrorKindNone                  ErrorKind = ""
	ErrorKindDataSourceUnavailable ErrorKind = "data_source_unavailable"
	ErrorKindChannelUnavailable    ErrorKind = "channel_unavailable"
	ErrorKindNoChannelAvailable    ErrorKind = "no_channel_available"
	ErrorKindValidation            ErrorKind = "validation_error"
	ErrorKindInternal              ErrorKind = "internal_error"
)

var (
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	ErrChannelUnavailable    = errors.New("channel unavailable")
	ErrNoChannelAvailable    = errors.New("no channel available")
	ErrValidation            = errors.New("validation error")
)

// KindOf maps an error chain onto its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrValidation):
		return ErrorKindValidation
	case errors.Is(err, ErrDataSourceUnavailable):
		return ErrorKindDataSourceUnavailable
	case errors.Is(err, ErrNoChannelAvailable):
		return ErrorKindNoChannelAvailable
	case errors.Is(err, ErrChannelUnavailable):
		return ErrorKindChannelUnavailable
	default:
		return ErrorKindInternal
	}
}

// DepositEvent is a decoded bridge deposit that cleared the alert threshold.
type DepositEvent struct {
	Wallet    string    `json:"wallet"`
	Amount    float64   `json:"amount"`
	Token     string    `json:"token"`
	TxHash    string    `json:"txHash"`
	Timestamp time.Time `json:"timestamp"`
	AmountUSD float64   `json:"amountUsd"`
}

const (
	SideLong  = "long"
	SideShort = "short"

	ActionBuy  = "buy"
	ActionSell = "sell"
)

// Position is an open perp position held by a tracked wallet.
type Position struct {
	Coin             string   `json:"coin"`
	Side             string   `json:"side"`
	NotionalUSD      float64  `json:"notionalUsd"`
	AvgEntryPrice    float64  `json:"avgEntryPrice"`
	LiquidationPrice *float64 `json:"liquidationPrice,omitempty"`
}

// Fill is a recent trade execution by a tracked wallet.
type Fill struct {
	Coin        string    `json:"coin"`
	Action      string    `json:"action"`
	Size        float64   `json:"size"`
	Price       float64   `json:"price"`
	NotionalUSD float64   `json:"notionalUsd"`
	Timestamp   time.Time `json:"timestamp"`
}

// EnrichedWallet combines positions and recent fills for one wallet.
type EnrichedWallet struct {
	Address          string     `json:"address"`
	Positions        []Position `json:"positions"`
	RecentFills      []Fill     `json:"recentFills"`
	TotalNotionalUSD float64    `json:"totalNotionalUsd"`
}

// ChatMessage is one entry in a chat transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Channel   ChannelID `json:"channel,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ChannelStatus describes one channel's configuration and reachability.
type ChannelStatus struct {
	Channel    ChannelID `json:"channel"`
	Configured bool      `json:"configured"`
	Reachable  bool      `json:"reachable"`
	Endpoint   string    `json:"endpoint,omitempty"`
}

// ResolutionOutcome is the terminal result of resolving one user message.
type ResolutionOutcome struct {
	Success   bool      `json:"success"`
	Response  string    `json:"response,omitempty"`
	Channel   ChannelID `json:"channel,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
}

// BridgeTransaction is a raw transaction addressed to (or from) the bridge.
type BridgeTransaction struct {
	Hash           string
	From           string
	To             string
	ValueWei       string
	Timestamp      time.Time
	TokenTransfers []TokenTransfer
}

// TokenTransfer is an ERC-20 transfer carried by a bridge transaction.
type TokenTransfer struct {
	TokenAddress string
	From         string
	To           string
	RawAmount    string
}

// PerpPosition is an undecoded clearinghouse position entry.
type PerpPosition struct {
	Coin             string
	SignedSize       float64
	EntryPrice       float64
	LiquidationPrice *float64
}

// PerpFill is an undecoded user fill entry, most recent first.
type PerpFill struct {
	Coin  string
	Size  float64
	Price float64
	Time  time.Time
}

// TokenInfo describes a token the detector can price. Rates are static
// approximations, not a live feed.
type TokenInfo struct {
	Symbol   string  `json:"symbol"`
	Address  string  `json:"address"`
	Decimals int     `json:"decimals"`
	USDRate  float64 `json:"usdRate"`
}

const (
	TokenUSDC = "USDC"
	TokenUSDT = "USDT"
	TokenETH  = "ETH"

	USDCAddress = "0xaf88d065e77c8cc2239327c5edb3a432268e5831"
	USDTAddress = "0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9"
	// Native ETH has no contract address.
	NativeTokenAddress = "0x0000000000000000000000000000000000000000"

	DefaultETHUSDRate = 2500.0
)

var SupportedTokens = []string{TokenUSDC, TokenUSDT, TokenETH}

// TokenTable builds the address-keyed token set used by the detector.
// ethUSDRate <= 0 falls back to DefaultETHUSDRate.
func TokenTable(ethUSDRate float64) map[string]TokenInfo {
	if ethUSDRate <= 0 {
		ethUSDRate = DefaultETHUSDRate
	}
	return map[string]TokenInfo{
		USDCAddress:        {Symbol: TokenUSDC, Address: USDCAddress, Decimals: 6, USDRate: 1.0},
		USDTAddress:        {Symbol: TokenUSDT, Address: USDTAddress, Decimals: 6, USDRate: 1.0},
		NativeTokenAddress: {Symbol: TokenETH, Address: NativeTokenAddress, Decimals: 18, USDRate: ethUSDRate},
	}
}

// TokenByAddress looks up a token by contract address, case-insensitively.
func TokenByAddress(table map[string]TokenInfo, address string) (TokenInfo, bool) {
	info, ok := table[strings.ToLower(strings.TrimSpace(address))]
	return info, ok
}

// FormatUSD renders a USD amount in the compact style used by alert text.
func FormatUSD(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
