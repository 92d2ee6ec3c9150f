package handler

import (
	"net/http"
	"strings"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type chatRequest struct {
	Message     string `json:"message"`
	PreferLocal *bool  `json:"preferLocal"`
}

// PostChat godoc
// @Summary      Send a chat message
// @Description  Routes the message through the channel chain and returns the first usable response
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body  chatRequest  true  "Chat message"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]interface{}
// @Router       /chat [post]
func (h *Handler) PostChat(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.post-chat")
	defer span.End()

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "request body must be JSON with a message field",
		})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "message must not be empty",
		})
		return
	}

	preferLocal := h.preferLocalDefault
	if req.PreferLocal != nil {
		preferLocal = *req.PreferLocal
	}
	pref := domain.PreferLocal
	if !preferLocal {
		pref = domain.PreferRemote
	}
	span.SetAttributes(attribute.String("preference", string(pref)))

	outcome := h.resolver.Resolve(ctx, req.Message, pref)
	if outcome.Success {
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"response": outcome.Response,
			"source":   outcome.Channel,
		})
		return
	}

	switch outcome.ErrorKind {
	case domain.ErrorKindValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "message must not be empty",
		})
	case domain.ErrorKindNoChannelAvailable:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "no response channel is currently available",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal error",
		})
	}
}

// GetChatStatus godoc
// @Summary      Chat channel status
// @Description  Reports configuration and reachability for every response channel
// @Tags         chat
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /chat [get]
func (h *Handler) GetChatStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-chat-status")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{
		"channels":    h.resolver.ChannelStatuses(ctx),
		"preferLocal": h.preferLocalDefault,
	})
}
