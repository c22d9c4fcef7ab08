package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath = "config.toml"
	DefaultHTTPAddr   = ":8080"
	DefaultPGHost     = "127.0.0.1"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGDatabase = "unishare"
	DefaultPGSSLMode  = "disable"
	// DefaultFileHost is the Telegram API host used for building direct
	// file-download URLs (https://<host>/file/bot<token>/<file_path>).
	DefaultFileHost = "https://api.telegram.org"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Postgres PostgresConfig `toml:"postgres"`
	Telegram TelegramConfig `toml:"telegram"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// TelegramConfig carries the system-default bot identity and storage channel.
// It is loaded once at process start and injected into the blob gateway and
// the ingestion bot; there is no compiled-in default credential.
type TelegramConfig struct {
	BotToken      string `toml:"bot_token"`
	BotUsername   string `toml:"bot_username"`
	ChatID        string `toml:"chat_id"`
	ChatName      string `toml:"chat_name"`
	ChatType      string `toml:"chat_type"`
	WebhookSecret string `toml:"webhook_secret"`
	FileHost      string `toml:"file_host"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		Telegram: TelegramConfig{
			ChatType: "channel",
			FileHost: DefaultFileHost,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	if strings.TrimSpace(cfg.Telegram.FileHost) == "" {
		cfg.Telegram.FileHost = DefaultFileHost
	}

	return cfg, nil
}
