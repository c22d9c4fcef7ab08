package botconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/unishare/unishare/internal/config"
	dbpkg "github.com/unishare/unishare/internal/db"
)

var (
	// ErrNoCredential indicates neither a personal nor a system bot token is
	// available. With a configured system default this is unreachable.
	ErrNoCredential = errors.New("no bot credential available")
	// ErrNoDestination indicates no storage chat could be resolved.
	ErrNoDestination = errors.New("no storage destination available")
)

// Service resolves bot credentials and storage destinations with the
// personal-then-system fallback, and manages stored personal configs.
type Service struct {
	db     dbpkg.DBTX
	system config.TelegramConfig
	logger *slog.Logger
}

// NewService creates a botconfig service. The system defaults come from the
// process configuration, loaded once at startup.
func NewService(log *slog.Logger, db dbpkg.DBTX, system config.TelegramConfig) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:     db,
		system: system,
		logger: log.With(slog.String("service", "botconfig")),
	}
}

// ResolveCredential returns the credential for one operation: the user's
// enabled personal bot when present, else the system default. Resolution is
// deterministic; a personal-lookup failure falls back rather than failing the
// operation.
func (s *Service) ResolveCredential(ctx context.Context, userID string) (Credential, error) {
	if cfg, ok := s.lookupPersonal(ctx, userID); ok {
		return Credential{
			Kind:     KindPersonal,
			ConfigID: cfg.ID,
			Token:    cfg.BotToken,
			Username: cfg.BotUsername,
		}, nil
	}
	if strings.TrimSpace(s.system.BotToken) == "" {
		return Credential{}, ErrNoCredential
	}
	return Credential{
		Kind:     KindSystem,
		Token:    s.system.BotToken,
		Username: s.system.BotUsername,
	}, nil
}

// ResolveDestination returns the storage chat for one operation, following the
// same personal-then-system fallback as ResolveCredential.
func (s *Service) ResolveDestination(ctx context.Context, userID string) (Destination, error) {
	if cfg, ok := s.lookupPersonal(ctx, userID); ok {
		dest, err := s.lookupChannel(ctx, cfg.ID)
		if err == nil {
			return dest, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("personal channel lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}
	if strings.TrimSpace(s.system.ChatID) == "" {
		return Destination{}, ErrNoDestination
	}
	return Destination{
		Kind:      KindSystem,
		ChatID:    s.system.ChatID,
		ChatName:  s.system.ChatName,
		ChatType:  s.system.ChatType,
		IsDefault: true,
	}, nil
}

// UpsertUserConfig creates or replaces a user's personal bot configuration.
func (s *Service) UpsertUserConfig(ctx context.Context, input UpsertConfigInput) (UserBotConfig, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return UserBotConfig{}, fmt.Errorf("user id is required")
	}
	token := strings.TrimSpace(input.BotToken)
	if token == "" {
		return UserBotConfig{}, fmt.Errorf("bot token is required")
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO user_bot_configs (user_id, bot_token, bot_username, use_personal_bot)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
			SET bot_token = EXCLUDED.bot_token,
			    bot_username = EXCLUDED.bot_username,
			    use_personal_bot = EXCLUDED.use_personal_bot
		RETURNING id, user_id, bot_token, bot_username, use_personal_bot, created_at`,
		userID,
		token,
		pgtype.Text{String: strings.TrimSpace(input.BotUsername), Valid: strings.TrimSpace(input.BotUsername) != ""},
		input.UsePersonalBot,
	)
	cfg, err := scanUserConfig(row)
	if err != nil {
		return UserBotConfig{}, fmt.Errorf("upsert bot config: %w", err)
	}
	return cfg, nil
}

// SetUserChannel assigns the default storage channel of the user's personal
// config, replacing any previous default.
func (s *Service) SetUserChannel(ctx context.Context, input SetChannelInput) (Destination, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return Destination{}, fmt.Errorf("user id is required")
	}
	chatID := strings.TrimSpace(input.ChannelID)
	if chatID == "" {
		return Destination{}, fmt.Errorf("channel id is required")
	}
	cfg, ok := s.lookupAny(ctx, userID)
	if !ok {
		return Destination{}, fmt.Errorf("no bot config for user %q", userID)
	}
	configID, err := dbpkg.ParseUUID(cfg.ID)
	if err != nil {
		return Destination{}, err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM telegram_channels WHERE bot_config_id = $1`, configID); err != nil {
		return Destination{}, fmt.Errorf("clear channels: %w", err)
	}
	channelType := strings.TrimSpace(input.ChannelType)
	if channelType == "" {
		channelType = "channel"
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO telegram_channels (bot_config_id, channel_id, channel_name, channel_type, is_default)
		VALUES ($1, $2, $3, $4, TRUE)`,
		configID,
		chatID,
		pgtype.Text{String: strings.TrimSpace(input.ChannelName), Valid: strings.TrimSpace(input.ChannelName) != ""},
		channelType,
	)
	if err != nil {
		return Destination{}, fmt.Errorf("set channel: %w", err)
	}
	return Destination{
		Kind:      KindPersonal,
		ChatID:    chatID,
		ChatName:  strings.TrimSpace(input.ChannelName),
		ChatType:  channelType,
		IsDefault: true,
	}, nil
}

// lookupPersonal returns the user's enabled personal config, if any.
func (s *Service) lookupPersonal(ctx context.Context, userID string) (UserBotConfig, bool) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserBotConfig{}, false
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, bot_token, bot_username, use_personal_bot, created_at
		FROM user_bot_configs
		WHERE user_id = $1 AND use_personal_bot`,
		userID)
	cfg, err := scanUserConfig(row)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("personal config lookup failed", slog.String("user_id", userID), slog.Any("error", err))
		}
		return UserBotConfig{}, false
	}
	return cfg, true
}

// lookupAny returns the user's config regardless of the use_personal_bot flag.
func (s *Service) lookupAny(ctx context.Context, userID string) (UserBotConfig, bool) {
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, bot_token, bot_username, use_personal_bot, created_at
		FROM user_bot_configs
		WHERE user_id = $1`,
		userID)
	cfg, err := scanUserConfig(row)
	if err != nil {
		return UserBotConfig{}, false
	}
	return cfg, true
}

func (s *Service) lookupChannel(ctx context.Context, configID string) (Destination, error) {
	id, err := dbpkg.ParseUUID(configID)
	if err != nil {
		return Destination{}, err
	}
	row := s.db.QueryRow(ctx, `
		SELECT channel_id, channel_name, channel_type, is_default
		FROM telegram_channels
		WHERE bot_config_id = $1
		ORDER BY is_default DESC, created_at
		LIMIT 1`,
		id)
	var (
		chatID      string
		chatName    pgtype.Text
		chatType    string
		isDefault   bool
		destination Destination
	)
	if err := row.Scan(&chatID, &chatName, &chatType, &isDefault); err != nil {
		return Destination{}, err
	}
	destination = Destination{
		Kind:      KindPersonal,
		ChatID:    chatID,
		ChatName:  chatName.String,
		ChatType:  chatType,
		IsDefault: isDefault,
	}
	return destination, nil
}

func scanUserConfig(row pgx.Row) (UserBotConfig, error) {
	var (
		id          pgtype.UUID
		botUsername pgtype.Text
		createdAt   pgtype.Timestamptz
		cfg         UserBotConfig
	)
	err := row.Scan(&id, &cfg.UserID, &cfg.BotToken, &botUsername, &cfg.UsePersonalBot, &createdAt)
	if err != nil {
		return UserBotConfig{}, err
	}
	cfg.ID = dbpkg.UUIDString(id)
	cfg.BotUsername = botUsername.String
	cfg.CreatedAt = createdAt.Time
	return cfg, nil
}
