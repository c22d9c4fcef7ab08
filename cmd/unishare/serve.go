package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/unishare/unishare/internal/botconfig"
	"github.com/unishare/unishare/internal/config"
	"github.com/unishare/unishare/internal/db"
	"github.com/unishare/unishare/internal/documents"
	"github.com/unishare/unishare/internal/handlers"
	"github.com/unishare/unishare/internal/ingest"
	"github.com/unishare/unishare/internal/logger"
	"github.com/unishare/unishare/internal/server"
	"github.com/unishare/unishare/internal/telegram"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideDBConn,
			provideDBTX,
			provideBotConfigService,
			provideDocumentStore,
			provideGateway,
			provideIngestBot,
			provideServerHandler(providePingHandler),
			provideServerHandler(provideDocumentsHandler),
			provideServerHandler(provideBotConfigHandler),
			provideServerHandler(provideWebhookHandler),
			provideServer,
		),
		fx.Invoke(
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideDBTX(conn *pgxpool.Pool) db.DBTX { return conn }

func provideBotConfigService(log *slog.Logger, conn db.DBTX, cfg config.Config) *botconfig.Service {
	return botconfig.NewService(log, conn, cfg.Telegram)
}

func provideDocumentStore(log *slog.Logger, conn db.DBTX) *documents.Store {
	return documents.NewStore(log, conn)
}

func provideGateway(log *slog.Logger, resolver *botconfig.Service, store *documents.Store, cfg config.Config) *telegram.Gateway {
	return telegram.NewGateway(log, resolver, store, cfg.Telegram)
}

func provideIngestBot(log *slog.Logger, store *documents.Store, gateway *telegram.Gateway, cfg config.Config) (*ingest.Bot, error) {
	var sender ingest.Sender
	if cfg.Telegram.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			return nil, fmt.Errorf("telegram bot init: %w", err)
		}
		sender = bot
	} else {
		log.Warn("no system bot token configured, webhook replies disabled")
	}
	return ingest.NewBot(log, store, gateway, sender), nil
}

func providePingHandler(log *slog.Logger, conn *pgxpool.Pool) *handlers.PingHandler {
	return handlers.NewPingHandler(log, conn)
}

func provideDocumentsHandler(log *slog.Logger, gateway *telegram.Gateway, store *documents.Store) *handlers.DocumentsHandler {
	return handlers.NewDocumentsHandler(log, gateway, store)
}

func provideBotConfigHandler(log *slog.Logger, gateway *telegram.Gateway, configs *botconfig.Service) *handlers.BotConfigHandler {
	return handlers.NewBotConfigHandler(log, gateway, configs)
}

func provideWebhookHandler(log *slog.Logger, cfg config.Config, bot *ingest.Bot) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, cfg.Telegram.WebhookSecret, bot)
}

type serverParams struct {
	fx.In
	Logger         *slog.Logger
	Config         config.Config
	ServerHandlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.NewServer(params.Logger, params.Config.Server.Addr, params.ServerHandlers)
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
