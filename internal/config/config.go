package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	// Hyperliquid bridge contract on Arbitrum.
	DefaultBridgeContract = "0x2Df1c51E09aECF9cacB7bc98cB1742757f163dF7"

	MaxLookbackMinutes = 1440
)

type Config struct {
	TelegramBotToken string
	RedisURL         string

	BridgeContract     string
	AlertThresholdUSD  float64
	LookbackMinutes    int
	ETHUSDRate         float64
	BlockscoutBaseURL  string
	HyperliquidInfoURL string
	WhalePollSecs      int
	WhaleCacheTTLSecs  int

	MailboxURL   string
	AgentAddress string

	ASIOneAPIKey  string
	ASIOneBaseURL string
	ASIOneModel   string

	ChannelTimeoutSecs int
	PreferLocal        bool

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int
}

func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         os.Getenv("REDIS_URL"),
		MailboxURL:       strings.TrimSpace(os.Getenv("MAILBOX_URL")),
		AgentAddress:     strings.TrimSpace(os.Getenv("AGENT_ADDRESS")),
		ASIOneAPIKey:     os.Getenv("ASI_ONE_API_KEY"),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
	}

	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.MailboxURL == "" {
		log.Println("Warning: MAILBOX_URL not set, local channel will be disabled")
	}
	if cfg.ASIOneAPIKey == "" {
		log.Println("Warning: ASI_ONE_API_KEY not set, remote channel will be disabled")
	}

	cfg.BridgeContract = strings.TrimSpace(os.Getenv("BRIDGE_CONTRACT"))
	if cfg.BridgeContract == "" {
		cfg.BridgeContract = DefaultBridgeContract
	}

	cfg.AlertThresholdUSD = 10_000_000
	if v := strings.TrimSpace(os.Getenv("ALERT_THRESHOLD_USD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.AlertThresholdUSD = n
		}
	}

	cfg.LookbackMinutes = 15
	if v := strings.TrimSpace(os.Getenv("LOOKBACK_MINUTES")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= MaxLookbackMinutes {
			cfg.LookbackMinutes = n
		}
	}

	cfg.ETHUSDRate = 2500
	if v := strings.TrimSpace(os.Getenv("ETH_USD_RATE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.ETHUSDRate = n
		}
	}

	cfg.BlockscoutBaseURL = strings.TrimSpace(os.Getenv("BLOCKSCOUT_BASE_URL"))
	if cfg.BlockscoutBaseURL == "" {
		cfg.BlockscoutBaseURL = "https://arbitrum.blockscout.com"
	}

	cfg.HyperliquidInfoURL = strings.TrimSpace(os.Getenv("HYPERLIQUID_INFO_URL"))
	if cfg.HyperliquidInfoURL == "" {
		cfg.HyperliquidInfoURL = "https://api.hyperliquid.xyz/info"
	}

	cfg.WhalePollSecs = 30
	if v := strings.TrimSpace(os.Getenv("WHALE_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WhalePollSecs = n
		}
	}

	cfg.WhaleCacheTTLSecs = 30
	if v := strings.TrimSpace(os.Getenv("WHALE_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WhaleCacheTTLSecs = n
		}
	}

	cfg.ASIOneBaseURL = strings.TrimSpace(os.Getenv("ASI_ONE_BASE_URL"))
	if cfg.ASIOneBaseURL == "" {
		cfg.ASIOneBaseURL = "https://api.asi1.ai/v1"
	}

	cfg.ASIOneModel = strings.TrimSpace(os.Getenv("ASI_ONE_MODEL"))
	if cfg.ASIOneModel == "" {
		cfg.ASIOneModel = "asi1-mini"
	}

	cfg.ChannelTimeoutSecs = 10
	if v := strings.TrimSpace(os.Getenv("CHANNEL_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChannelTimeoutSecs = n
		}
	}

	cfg.PreferLocal = true
	if v := strings.TrimSpace(os.Getenv("PREFER_LOCAL")); v != "" {
		if strings.EqualFold(v, "false") {
			cfg.PreferLocal = false
		}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Printf("Warning: unsupported MCP_TRANSPORT=%q, defaulting to stdio", cfg.MCPTransport)
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = 8090
	if v := strings.TrimSpace(os.Getenv("MCP_HTTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPHTTPPort = n
		}
	}

	cfg.MCPRequestTimeoutSecs = 5
	if v := strings.TrimSpace(os.Getenv("MCP_REQUEST_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRequestTimeoutSecs = n
		}
	}

	cfg.MCPRateLimitPerMin = 60
	if v := strings.TrimSpace(os.Getenv("MCP_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MCPRateLimitPerMin = n
		}
	}

	return cfg
}
