package mcp

import (
	"fmt"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultThresholdUSD    = 10_000_000
	defaultLookbackMinutes = 15
	maxLookbackMinutes     = 1440
)

type whalesDetectInput struct {
	ThresholdUSD    float64 `json:"threshold_usd,omitempty" jsonschema:"minimum deposit size in USD, defaults to 10000000"`
	LookbackMinutes int     `json:"lookback_minutes,omitempty" jsonschema:"scan window in minutes, max 1440, defaults to 15"`
}

type whalesDetectOutput struct {
	Whales          []domain.DepositEvent `json:"whales"`
	Count           int                   `json:"count"`
	ThresholdUSD    float64               `json:"threshold_usd"`
	LookbackMinutes int                   `json:"lookback_minutes"`
}

type walletEnrichInput struct {
	Address string `json:"address" jsonschema:"wallet address (0x followed by 40 hex characters)"`
}

type walletEnrichOutput struct {
	Wallet *domain.EnrichedWallet `json:"wallet"`
}

type chatResolveInput struct {
	Message     string `json:"message" jsonschema:"the chat message to answer"`
	PreferLocal *bool  `json:"preferLocal,omitempty" jsonschema:"try local channels before the remote gateway, defaults to true"`
}

type chatResolveOutput struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Source   string `json:"source,omitempty"`
	Error    string `json:"error,omitempty"`
}

type channelStatusOutput struct {
	Channels []domain.ChannelStatus `json:"channels"`
}

func normalizeThreshold(thresholdUSD float64) (float64, error) {
	if thresholdUSD == 0 {
		return defaultThresholdUSD, nil
	}
	if thresholdUSD < 0 {
		return 0, fmt.Errorf("threshold_usd must be positive")
	}
	return thresholdUSD, nil
}

func normalizeLookback(lookbackMinutes int) (int, error) {
	if lookbackMinutes == 0 {
		return defaultLookbackMinutes, nil
	}
	if lookbackMinutes < 0 || lookbackMinutes > maxLookbackMinutes {
		return 0, fmt.Errorf("lookback_minutes must be between 1 and %d", maxLookbackMinutes)
	}
	return lookbackMinutes, nil
}

func normalizeWallet(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid wallet address: %s", address)
	}
	return address, nil
}

func resolvePreference(preferLocal *bool) domain.ChannelPreference {
	if preferLocal != nil && !*preferLocal {
		return domain.PreferRemote
	}
	return domain.PreferLocal
}
