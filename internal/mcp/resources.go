package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, whales WhaleReader, resolver ChatResolver) {
	server.AddResource(&mcp.Resource{
		URI:         "tokens://supported",
		Name:        "supported-tokens",
		Description: "Bridge deposit tokens tracked by the whale scan",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		_ = ctx
		return jsonResource(req.Params.URI, domain.SupportedTokens)
	})

	server.AddResource(&mcp.Resource{
		URI:         "channels://status",
		Name:        "channel-status",
		Description: "Configuration and reachability of every chat response channel",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if resolver == nil {
			return nil, fmt.Errorf("resolver unavailable")
		}
		return jsonResource(req.Params.URI, channelStatusOutput{Channels: resolver.ChannelStatuses(ctx)})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "whales://recent{?threshold_usd,lookback_minutes}",
		Name:        "whales-recent",
		Description: "Recent whale deposits; optional threshold_usd and lookback_minutes query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if whales == nil {
			return nil, fmt.Errorf("detection service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "whales" || parsed.Host != "recent" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		threshold := float64(defaultThresholdUSD)
		if raw := strings.TrimSpace(parsed.Query().Get("threshold_usd")); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid threshold_usd: %s", raw)
			}
			threshold, err = normalizeThreshold(v)
			if err != nil {
				return nil, err
			}
		}

		lookback := defaultLookbackMinutes
		if raw := strings.TrimSpace(parsed.Query().Get("lookback_minutes")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid lookback_minutes: %s", raw)
			}
			lookback, err = normalizeLookback(n)
			if err != nil {
				return nil, err
			}
		}

		deposits, err := whales.Detect(ctx, threshold, lookback)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, whalesDetectOutput{
			Whales:          deposits,
			Count:           len(deposits),
			ThresholdUSD:    threshold,
			LookbackMinutes: lookback,
		})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
