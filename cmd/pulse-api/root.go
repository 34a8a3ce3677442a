package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/pulse/backend/internal/config"
	"github.com/JonnyWalker81/pulse/backend/internal/logger"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pulse-api",
	Short: "Pulse wellness API server",
	Long:  `A REST API server for the Pulse daily wellness check-in application.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment variables take precedence
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(remindersCmd)
}

// loadConfig reads the configuration and installs the process-wide logger.
func loadConfig() (*config.Config, *config.Loader, logger.Logger, error) {
	cfg, loader, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewSlogLogger(logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      cfg.Log.Format,
		AddSource:   cfg.Log.AddSource,
		SentryDSN:   cfg.Sentry.DSN,
		Environment: cfg.Server.Env,
	})
	logger.SetDefault(log)

	return cfg, loader, log, nil
}
