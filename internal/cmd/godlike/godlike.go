// Package godlike parses bot command flags and composes the bot entrypoint.
package godlike

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/godlike/internal/platform/cmd"
	"github.com/louisbranch/godlike/internal/platform/logging"
	server "github.com/louisbranch/godlike/internal/services/godlike/app"
)

// Config holds bot command configuration.
type Config struct {
	Token        string        `env:"GODLIKE_TOKEN"`
	GuildID      string        `env:"GODLIKE_GUILD_ID"`
	DBPath       string        `env:"GODLIKE_DB_PATH"       envDefault:"data/godlike.sqlite"`
	HTTPAddr     string        `env:"GODLIKE_HTTP_ADDR"     envDefault:":8090"`
	SheetTimeout time.Duration `env:"GODLIKE_SHEET_TIMEOUT" envDefault:"180s"`
	LogLevel     string        `env:"GODLIKE_LOG_LEVEL"     envDefault:"info"`
	LogFormat    string        `env:"GODLIKE_LOG_FORMAT"    envDefault:"console"`
	LogFile      string        `env:"GODLIKE_LOG_FILE"`
}

// ParseConfig parses .env, environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Token, "token", cfg.Token, "Discord bot token")
	fs.StringVar(&cfg.GuildID, "guild-id", cfg.GuildID, "guild to register commands in; empty registers globally")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "operator HTTP listen address; empty disables it")
	fs.DurationVar(&cfg.SheetTimeout, "sheet-timeout", cfg.SheetTimeout, "inactivity timeout of character sheets")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write logs to this file instead of stderr")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return Config{}, fmt.Errorf("discord token is required: set GODLIKE_TOKEN or -token")
	}
	return cfg, nil
}

// Run builds the bot and serves until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	logger, closeLog, err := logging.New(logging.Options{
		Service: entrypoint.ServiceGodlike,
		Level:   cfg.LogLevel,
		Format:  logging.Format(cfg.LogFormat),
		File:    cfg.LogFile,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = closeLog()
	}()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceGodlike, entrypoint.RunOptions{Logger: &logger}, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			Token:        cfg.Token,
			GuildID:      cfg.GuildID,
			DBPath:       cfg.DBPath,
			HTTPAddr:     cfg.HTTPAddr,
			SheetTimeout: cfg.SheetTimeout,
			Logger:       logger,
		}); err != nil {
			return fmt.Errorf("serve godlike: %w", err)
		}
		return nil
	})
}
