package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"earnquick-bot/internal/config"
	"earnquick-bot/internal/ledger"
	"earnquick-bot/internal/utils"
)

// TokenIssuer mints ad-view tokens for the mini app.
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// UpdateDispatcher processes one decoded Telegram update.
type UpdateDispatcher interface {
	HandleUpdate(ctx context.Context, update telego.Update) error
}

type Handler struct {
	cfg        *config.Config
	ledger     *ledger.Service
	tokens     TokenIssuer
	dispatcher UpdateDispatcher
	log        *zap.Logger
	webhookSet bool
}

func NewHandler(cfg *config.Config, svc *ledger.Service, tokens TokenIssuer, dispatcher UpdateDispatcher, log *zap.Logger, webhookSet bool) *Handler {
	return &Handler{
		cfg:        cfg,
		ledger:     svc,
		tokens:     tokens,
		dispatcher: dispatcher,
		log:        log,
		webhookSet: webhookSet,
	}
}

func (h *Handler) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"webhook_registered": h.webhookSet,
	})
}

// getData serves the dashboard snapshot. A missing, malformed or unknown
// user id all resolve to the zero-valued document; the endpoint never
// reports "not found".
func (h *Handler) getData(c *gin.Context) {
	userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)

	snap, err := h.ledger.Snapshot(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("snapshot failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) getAdToken(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}

	tok, err := h.tokens.Issue(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("token issue failed", zap.Int64("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tok})
}

// handleWebhook accepts one Telegram update per call. The path segment must
// match the bot token, the same scheme the original deployment used to keep
// the endpoint unguessable.
func (h *Handler) handleWebhook(c *gin.Context) {
	if c.Param("token") != h.cfg.BotToken {
		c.String(http.StatusNotFound, "not found")
		return
	}
	if len(h.cfg.AllowedWebhookCIDRs) > 0 && !utils.IsAllowedIP(c.ClientIP(), h.cfg.AllowedWebhookCIDRs) {
		c.String(http.StatusForbidden, "forbidden")
		return
	}

	var update telego.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	if err := h.dispatcher.HandleUpdate(c.Request.Context(), update); err != nil {
		h.log.Error("webhook processing failed", zap.Error(err))
		c.String(http.StatusOK, "error")
		return
	}
	c.String(http.StatusOK, "ok")
}
