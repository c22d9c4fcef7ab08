package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/unishare/unishare/internal/botconfig"
	"github.com/unishare/unishare/internal/telegram"
)

// CredentialTester checks a bot token against Telegram's getMe endpoint.
type CredentialTester interface {
	TestCredential(ctx context.Context, token string) (telegram.BotIdentity, error)
}

// ConfigService manages stored personal bot configurations.
type ConfigService interface {
	UpsertUserConfig(ctx context.Context, input botconfig.UpsertConfigInput) (botconfig.UserBotConfig, error)
	SetUserChannel(ctx context.Context, input botconfig.SetChannelInput) (botconfig.Destination, error)
}

// BotConfigHandler serves personal bot configuration endpoints.
type BotConfigHandler struct {
	tester   CredentialTester
	configs  ConfigService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewBotConfigHandler creates a BotConfigHandler.
func NewBotConfigHandler(log *slog.Logger, tester CredentialTester, configs ConfigService) *BotConfigHandler {
	return &BotConfigHandler{
		tester:   tester,
		configs:  configs,
		validate: validator.New(),
		logger:   log.With(slog.String("handler", "botconfig")),
	}
}

// Register registers bot configuration routes.
func (h *BotConfigHandler) Register(e *echo.Echo) {
	group := e.Group("/api/bot")
	group.POST("/test", h.Test)
	group.PUT("/config", h.UpsertConfig)
	group.PUT("/channel", h.SetChannel)
}

type testRequest struct {
	BotToken string `json:"bot_token" validate:"required"`
}

// Test performs a pure connectivity check on a bot token.
func (h *BotConfigHandler) Test(c echo.Context) error {
	var req testRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	identity, err := h.tester.TestCredential(c.Request().Context(), req.BotToken)
	if err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"bot":     identity,
	})
}

type upsertConfigRequest struct {
	BotToken       string `json:"bot_token" validate:"required"`
	BotUsername    string `json:"bot_username" validate:"max=255"`
	UsePersonalBot bool   `json:"use_personal_bot"`
}

// UpsertConfig stores the caller's personal bot configuration.
func (h *BotConfigHandler) UpsertConfig(c echo.Context) error {
	userID := c.Request().Header.Get(userIDHeader)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user id is required")
	}
	var req upsertConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg, err := h.configs.UpsertUserConfig(c.Request().Context(), botconfig.UpsertConfigInput{
		UserID:         userID,
		BotToken:       req.BotToken,
		BotUsername:    req.BotUsername,
		UsePersonalBot: req.UsePersonalBot,
	})
	if err != nil {
		h.logger.Error("upsert bot config failed", slog.String("user_id", userID), slog.Any("error", err))
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"config":  cfg,
	})
}

type setChannelRequest struct {
	ChannelID   string `json:"channel_id" validate:"required"`
	ChannelName string `json:"channel_name" validate:"max=255"`
	ChannelType string `json:"channel_type" validate:"omitempty,oneof=channel group"`
}

// SetChannel assigns the caller's default storage channel.
func (h *BotConfigHandler) SetChannel(c echo.Context) error {
	userID := c.Request().Header.Get(userIDHeader)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "user id is required")
	}
	var req setChannelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dest, err := h.configs.SetUserChannel(c.Request().Context(), botconfig.SetChannelInput{
		UserID:      userID,
		ChannelID:   req.ChannelID,
		ChannelName: req.ChannelName,
		ChannelType: req.ChannelType,
	})
	if err != nil {
		h.logger.Error("set channel failed", slog.String("user_id", userID), slog.Any("error", err))
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"channel": dest,
	})
}
