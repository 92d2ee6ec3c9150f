package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/cache"
	"github.com/xyd945/hyperliquid-whale-agent/internal/channel"
	"github.com/xyd945/hyperliquid-whale-agent/internal/config"
	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
	mcpserver "github.com/xyd945/hyperliquid-whale-agent/internal/mcp"
	"github.com/xyd945/hyperliquid-whale-agent/internal/provider"
	"github.com/xyd945/hyperliquid-whale-agent/internal/service"
	"github.com/xyd945/hyperliquid-whale-agent/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc         = godotenv.Load
	loadConfigFunc      = config.Load
	initRedisFunc       = cache.InitRedis
	initTracerFunc      = tracing.InitTracer
	newBridgeSourceFunc = provider.NewBlockscoutProvider
	newPerpsSourceFunc  = provider.NewHyperliquidProvider
	newMCPServerFunc    = mcpserver.NewServer
	newMCPHandlerFunc   = mcpserver.NewHTTPTransportHandler
	runStdioFunc        = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initRedisFunc(ctx, cfg.RedisURL)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	bridgeSource := newBridgeSourceFunc(tracer, cfg.BlockscoutBaseURL)
	perpsSource := newPerpsSourceFunc(tracer, cfg.HyperliquidInfoURL)
	detection := service.NewDetectionService(
		tracer, bridgeSource, cfg.BridgeContract, domain.TokenTable(cfg.ETHUSDRate),
		cache.Client, time.Duration(cfg.WhaleCacheTTLSecs)*time.Second,
	)
	enrichment := service.NewEnrichmentService(tracer, perpsSource)

	localAgent := channel.NewLocalAgent(tracer, cfg.MailboxURL, cfg.AgentAddress)
	mockAgent := channel.NewMockAgent(tracer, detection, enrichment, cfg.AlertThresholdUSD, cfg.LookbackMinutes)
	remoteGateway := channel.NewRemoteGateway(tracer, cfg.ASIOneAPIKey, cfg.ASIOneBaseURL, cfg.ASIOneModel)
	resolver := service.NewResolver(
		tracer,
		[]service.Responder{localAgent, mockAgent, remoteGateway},
		time.Duration(cfg.ChannelTimeoutSecs)*time.Second,
	)

	mcpSrv := newMCPServerFunc(tracer, detection, enrichment, resolver, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatalf("mcp stdio server failed: %v", err)
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv); err != nil {
			log.Fatalf("mcp http server failed: %v", err)
		}
	default:
		log.Fatalf("unsupported MCP_TRANSPORT: %s", cfg.MCPTransport)
	}
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}
	log.Printf("mcp http server listening on %s", addr)

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Printf("mcp http server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
