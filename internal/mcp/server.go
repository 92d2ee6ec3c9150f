package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultRequestTimeout = 5 * time.Second

type ServerConfig struct {
	RequestTimeout time.Duration
}

// NewServer builds the MCP server exposing whale detection, wallet enrichment
// and chat resolution. Every inbound request runs under the configured
// timeout; spans are emitted when a tracer is supplied.
func NewServer(tracer trace.Tracer, whales WhaleReader, wallets WalletReader, resolver ChatResolver, cfg ServerConfig) *sdkmcp.Server {
	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "hyperliquid-whale-agent-mcp",
		Version: "1.0.0",
	}, &sdkmcp.ServerOptions{
		Instructions: "Use these tools/resources to scan bridge deposits for whales, profile wallets, and chat with the agent.",
		Logger:       slog.Default(),
	})

	srv.AddReceivingMiddleware(withRequestTimeout(cfg.RequestTimeout))
	if tracer != nil {
		srv.AddReceivingMiddleware(withRequestSpans(tracer))
	}

	registerTools(srv, whales, wallets, resolver)
	registerResources(srv, whales, resolver)
	return srv
}

// NewHTTPTransportHandler exposes the server over the streamable HTTP
// transport, behind the auth/limit chain from HTTPHandlerConfig.
func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPHandlerConfig) http.Handler {
	base := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, &sdkmcp.StreamableHTTPOptions{})
	return wrapHTTPHandler(base, cfg)
}

func withRequestTimeout(timeout time.Duration) sdkmcp.Middleware {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, method, req)
		}
	}
}

func withRequestSpans(tracer trace.Tracer) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			name, attrs := describeRequest(method, req)
			ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
			defer span.End()

			result, err := next(ctx, method, req)
			if err != nil {
				span.RecordError(err)
			}
			return result, err
		}
	}
}

// describeRequest picks a span name and attributes for an inbound MCP
// request. Tool calls get per-tool span names so traces group by capability.
func describeRequest(method string, req sdkmcp.Request) (string, []attribute.KeyValue) {
	attrs := []attribute.KeyValue{attribute.String("mcp.method", method)}

	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		tool := strings.TrimSpace(r.Params.Name)
		if tool == "" {
			return "mcp.tool.call", attrs
		}
		attrs = append(attrs, attribute.String("mcp.tool", tool))
		return "mcp.tool." + tool, attrs

	case *sdkmcp.ReadResourceRequest:
		attrs = append(attrs, attribute.String("mcp.resource.uri", strings.TrimSpace(r.Params.URI)))
		return "mcp.resource.read", attrs
	}

	return "mcp." + strings.ReplaceAll(method, "/", "."), attrs
}
