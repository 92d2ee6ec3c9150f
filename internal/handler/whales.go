package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetWhales godoc
// @Summary      Detect whale deposits
// @Description  Scans recent bridge deposits and returns those above the USD threshold
// @Tags         whales
// @Produce      json
// @Param        threshold_usd     query  number  false  "Minimum deposit size in USD"
// @Param        lookback_minutes  query  int     false  "Scan window in minutes (max 1440)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/whales [get]
func (h *Handler) GetWhales(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-whales")
	defer span.End()

	thresholdUSD := h.thresholdUSD
	if raw := strings.TrimSpace(c.Query("threshold_usd")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold_usd must be a positive number"})
			return
		}
		thresholdUSD = v
	}

	lookbackMinutes := h.lookbackMinutes
	if raw := strings.TrimSpace(c.Query("lookback_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lookback_minutes must be an integer"})
			return
		}
		lookbackMinutes = n
	}
	span.SetAttributes(
		attribute.Float64("threshold_usd", thresholdUSD),
		attribute.Int("lookback_minutes", lookbackMinutes),
	)

	deposits, err := h.detection.Detect(ctx, thresholdUSD, lookbackMinutes)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, domain.ErrDataSourceUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "bridge data source unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"whales":           deposits,
		"count":            len(deposits),
		"threshold_usd":    thresholdUSD,
		"lookback_minutes": lookbackMinutes,
	})
}

// GetWallet godoc
// @Summary      Wallet trading profile
// @Description  Returns open perpetual positions and recent fills for a wallet
// @Tags         wallets
// @Produce      json
// @Param        address  path  string  true  "Wallet address (0x...)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/wallets/{address} [get]
func (h *Handler) GetWallet(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-wallet")
	defer span.End()

	address := strings.TrimSpace(c.Param("address"))
	if !common.IsHexAddress(address) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address must be a 0x-prefixed 40 hex character address"})
		return
	}
	span.SetAttributes(attribute.String("address", address))

	c.JSON(http.StatusOK, h.enrichment.Enrich(ctx, address))
}
