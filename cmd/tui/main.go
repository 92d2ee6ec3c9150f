package main

import (
	"log"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/channel"
	"github.com/xyd945/hyperliquid-whale-agent/internal/config"
	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
	"github.com/xyd945/hyperliquid-whale-agent/internal/provider"
	"github.com/xyd945/hyperliquid-whale-agent/internal/service"
	"github.com/xyd945/hyperliquid-whale-agent/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	runProgramFunc = func(p *tea.Program) (tea.Model, error) { return p.Run() }
)

func main() {
	loadEnvFunc()
	cfg := loadConfigFunc()

	// Span export would fight the terminal UI for output streams.
	tracer := trace.NewNoopTracerProvider().Tracer("hyperliquid-whale-agent-tui")

	bridgeSource := provider.NewBlockscoutProvider(tracer, cfg.BlockscoutBaseURL)
	perpsSource := provider.NewHyperliquidProvider(tracer, cfg.HyperliquidInfoURL)
	detection := service.NewDetectionService(
		tracer, bridgeSource, cfg.BridgeContract, domain.TokenTable(cfg.ETHUSDRate),
		nil, time.Duration(cfg.WhaleCacheTTLSecs)*time.Second,
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

	svc := tui.Services{
		Chat:            resolver,
		Whales:          detection,
		ThresholdUSD:    cfg.AlertThresholdUSD,
		LookbackMinutes: cfg.LookbackMinutes,
		PreferLocal:     cfg.PreferLocal,
	}

	p := tea.NewProgram(tui.NewAppModel(svc), tea.WithAltScreen())
	if _, err := runProgramFunc(p); err != nil {
		log.Fatalf("tui exited with error: %v", err)
	}
}
