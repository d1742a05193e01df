package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/akozlov/habitbot/internal/cli"
	"github.com/akozlov/habitbot/internal/constants"
	"github.com/akozlov/habitbot/internal/keyring"
	"github.com/akozlov/habitbot/internal/logger"
	"github.com/akozlov/habitbot/internal/storage"
	"github.com/akozlov/habitbot/internal/storage/postgres"
	"github.com/akozlov/habitbot/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Debug    bool   `help:"Enable debug logging." env:"HABITBOT_DEBUG"`
	DB       string `help:"SQLite file path or PostgreSQL connection string. Falls back to the OS keyring, then to the default SQLite path." env:"HABITBOT_DB"`
	Token    string `help:"Telegram bot token." env:"HABITBOT_TOKEN"`
	Timezone string `help:"IANA timezone for dates and reminder times." env:"HABITBOT_TZ" default:"Local"`

	Serve   cli.ServeCmd `cmd:"" default:"1" help:"Run the bot."`
	Init    cli.InitCmd  `cmd:"" help:"Initialize or upgrade storage."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store the database connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage stored credentials."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Telegram habit tracker with streaks and reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": constants.Version},
	)

	configDir := defaultConfigDir()
	if err := logger.Init(logger.Config{Debug: CLI.Debug, Dir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	location, err := resolveDBLocation(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var store storage.Provider
	if storage.IsPostgres(location) {
		store = postgres.New(location)
	} else {
		store = sqlite.New(location)
	}

	appCtx := &cli.Context{
		Store:    store,
		Token:    CLI.Token,
		Timezone: CLI.Timezone,
		Debug:    CLI.Debug,
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("Command failed", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveDBLocation picks the database location: the --db flag or
// HABITBOT_DB first, then the OS keyring, then the default SQLite file.
func resolveDBLocation(configDir string) (string, error) {
	if CLI.DB != "" {
		return expandHome(CLI.DB), nil
	}

	connStr, err := keyring.GetConnectionString()
	if err == nil {
		return connStr, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) && !errors.Is(err, keyring.ErrKeyringUnavailable) {
		return "", err
	}

	return filepath.Join(configDir, constants.AppName+".db"), nil
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, constants.AppName)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
