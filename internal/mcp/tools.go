package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, whales WhaleReader, wallets WalletReader, resolver ChatResolver) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "whales_detect",
		Description: "Scan recent Hyperliquid bridge deposits and return those above the USD threshold",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in whalesDetectInput) (*mcp.CallToolResult, whalesDetectOutput, error) {
		if whales == nil {
			return nil, whalesDetectOutput{}, fmt.Errorf("detection service unavailable")
		}
		threshold, err := normalizeThreshold(in.ThresholdUSD)
		if err != nil {
			return nil, whalesDetectOutput{}, err
		}
		lookback, err := normalizeLookback(in.LookbackMinutes)
		if err != nil {
			return nil, whalesDetectOutput{}, err
		}

		deposits, err := whales.Detect(ctx, threshold, lookback)
		if err != nil {
			return nil, whalesDetectOutput{}, err
		}
		return nil, whalesDetectOutput{
			Whales:          deposits,
			Count:           len(deposits),
			ThresholdUSD:    threshold,
			LookbackMinutes: lookback,
		}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "wallet_enrich",
		Description: "Get open perpetual positions and recent fills for a wallet",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in walletEnrichInput) (*mcp.CallToolResult, walletEnrichOutput, error) {
		if wallets == nil {
			return nil, walletEnrichOutput{}, fmt.Errorf("enrichment service unavailable")
		}
		address, err := normalizeWallet(in.Address)
		if err != nil {
			return nil, walletEnrichOutput{}, err
		}
		return nil, walletEnrichOutput{Wallet: wallets.Enrich(ctx, address)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "chat_resolve",
		Description: "Answer a chat message through the channel chain with local or remote preference",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in chatResolveInput) (*mcp.CallToolResult, chatResolveOutput, error) {
		if resolver == nil {
			return nil, chatResolveOutput{}, fmt.Errorf("resolver unavailable")
		}
		if strings.TrimSpace(in.Message) == "" {
			return nil, chatResolveOutput{}, fmt.Errorf("message is required")
		}

		outcome := resolver.Resolve(ctx, in.Message, resolvePreference(in.PreferLocal))
		out := chatResolveOutput{
			Success:  outcome.Success,
			Response: outcome.Response,
			Source:   string(outcome.Channel),
		}
		if !outcome.Success {
			out.Error = string(outcome.ErrorKind)
			if outcome.ErrorKind == domain.ErrorKindNoChannelAvailable {
				out.Error = "no response channel is currently available"
			}
		}
		return nil, out, nil
	})
}
