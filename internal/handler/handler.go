package handler

import (
	"net/http"

	"github.com/xyd945/hyperliquid-whale-agent/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer     trace.Tracer
	resolver   *service.Resolver
	detection  *service.DetectionService
	enrichment *service.EnrichmentService

	preferLocalDefault bool
	thresholdUSD       float64
	lookbackMinutes    int
}

func New(
	tracer trace.Tracer,
	resolver *service.Resolver,
	detection *service.DetectionService,
	enrichment *service.EnrichmentService,
	preferLocalDefault bool,
	thresholdUSD float64,
	lookbackMinutes int,
) *Handler {
	return &Handler{
		tracer:             tracer,
		resolver:           resolver,
		detection:          detection,
		enrichment:         enrichment,
		preferLocalDefault: preferLocalDefault,
		thresholdUSD:       thresholdUSD,
		lookbackMinutes:    lookbackMinutes,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/chat", h.PostChat)
	r.GET("/chat", h.GetChatStatus)
	r.GET("/api/whales", h.GetWhales)
	r.GET("/api/wallets/:address", h.GetWallet)
}

// Health godoc
// @Summary      Health check
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
