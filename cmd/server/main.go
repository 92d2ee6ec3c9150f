package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/bot"
	"github.com/xyd945/hyperliquid-whale-agent/internal/cache"
	"github.com/xyd945/hyperliquid-whale-agent/internal/channel"
	"github.com/xyd945/hyperliquid-whale-agent/internal/config"
	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"
	"github.com/xyd945/hyperliquid-whale-agent/internal/handler"
	"github.com/xyd945/hyperliquid-whale-agent/internal/job"
	"github.com/xyd945/hyperliquid-whale-agent/internal/provider"
	"github.com/xyd945/hyperliquid-whale-agent/internal/service"
	"github.com/xyd945/hyperliquid-whale-agent/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newBridgeSourceFunc    = provider.NewBlockscoutProvider
	newPerpsSourceFunc     = provider.NewHyperliquidProvider
	tokenTableFunc         = domain.TokenTable
	startPollerFunc        = func(p *job.WhalePoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Hyperliquid Whale Agent API
// @version         1.0
// @description     Whale deposit detection and chat agent for the Hyperliquid bridge.

// @host      localhost:8080
// @BasePath  /
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

	// Providers and core services
	bridgeSource := newBridgeSourceFunc(tracer, cfg.BlockscoutBaseURL)
	perpsSource := newPerpsSourceFunc(tracer, cfg.HyperliquidInfoURL)
	detection := service.NewDetectionService(
		tracer, bridgeSource, cfg.BridgeContract, tokenTableFunc(cfg.ETHUSDRate),
		cache.Client, time.Duration(cfg.WhaleCacheTTLSecs)*time.Second,
	)
	enrichment := service.NewEnrichmentService(tracer, perpsSource)

	// Response channels, local-capable first with the remote gateway last
	localAgent := channel.NewLocalAgent(tracer, cfg.MailboxURL, cfg.AgentAddress)
	mockAgent := channel.NewMockAgent(tracer, detection, enrichment, cfg.AlertThresholdUSD, cfg.LookbackMinutes)
	remoteGateway := channel.NewRemoteGateway(tracer, cfg.ASIOneAPIKey, cfg.ASIOneBaseURL, cfg.ASIOneModel)
	resolver := service.NewResolver(
		tracer,
		[]service.Responder{localAgent, mockAgent, remoteGateway},
		time.Duration(cfg.ChannelTimeoutSecs)*time.Second,
	)

	// Telegram bot and whale poller
	os.Setenv("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken)
	alerts := startTelegramBotFunc(detection, enrichment, resolver, cfg.AlertThresholdUSD, cfg.LookbackMinutes)
	poller := job.NewWhalePoller(tracer, detection, alerts, cfg.AlertThresholdUSD, cfg.LookbackMinutes, cfg.WhalePollSecs)
	startPollerFunc(poller, ctx)

	// HTTP surface
	h := handler.New(tracer, resolver, detection, enrichment, cfg.PreferLocal, cfg.AlertThresholdUSD, cfg.LookbackMinutes)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("hyperliquid-whale-agent"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func httpAddrFromEnv() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
