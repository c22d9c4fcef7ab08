package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
)

const webhookMaxBodyBytes int64 = 1 << 20 // 1 MiB

// UpdateProcessor consumes one decoded Telegram update.
type UpdateProcessor interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler receives Telegram webhook callbacks for the ingestion bot,
// gated by a shared-secret query parameter.
type WebhookHandler struct {
	secret    string
	processor UpdateProcessor
	logger    *slog.Logger
}

// NewWebhookHandler creates the webhook receiver. An empty secret disables
// the endpoint rather than leaving it open.
func NewWebhookHandler(log *slog.Logger, secret string, processor UpdateProcessor) *WebhookHandler {
	return &WebhookHandler{
		secret:    strings.TrimSpace(secret),
		processor: processor,
		logger:    log.With(slog.String("handler", "telegram_webhook")),
	}
}

// Register registers the webhook route.
func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/telegram/webhook", h.Handle)
}

// Handle authenticates and processes one webhook request. The update is
// processed to completion before responding; Telegram redelivers on non-2xx,
// so processing errors (already replied to the sender) still return 200.
func (h *WebhookHandler) Handle(c echo.Context) error {
	if h.secret == "" {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "webhook secret not configured")
	}
	provided := c.QueryParam("secret")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.secret)) != 1 {
		return echo.NewHTTPError(http.StatusForbidden, "invalid webhook secret")
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, webhookMaxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("read body: %v", err))
	}
	if int64(len(payload)) > webhookMaxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("payload too large: max %d bytes", webhookMaxBodyBytes))
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(payload, &update); err != nil {
		h.logger.Warn("malformed update payload", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusBadRequest, "malformed update")
	}

	h.processor.HandleUpdate(c.Request().Context(), update)
	return c.NoContent(http.StatusOK)
}
