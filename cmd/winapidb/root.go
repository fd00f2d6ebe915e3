package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/winapi-history/winapidb/internal/config"
	"github.com/winapi-history/winapidb/internal/database"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "winapidb",
	Short:         "winapidb - Windows API availability history",
	Long:          "winapidb records which Windows API symbols each DLL exports on each Windows release.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err := newLogger(level, cfg.Log.Format)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the SQLite database (default: $WINAPIDB_DIR/winapi.sqlite3)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newTagMetaCmd())
	rootCmd.AddCommand(newSymbolCmd())
	rootCmd.AddCommand(newCompareCmd())
	rootCmd.AddCommand(newMCPCmd())
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
			return nil, fmt.Errorf("invalid log level: %s (valid values: debug, info, warn, error)", level)
		}
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func openDatabase() (*database.Context, error) {
	path := dbPath
	if path == "" {
		path = appConfig.DatabasePath()
	}
	return database.CreateDatabase(path, database.WithLogger(slog.Default()))
}
