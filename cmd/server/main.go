package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AnshRaj112/socialapp-backend/internal/config"
	"github.com/AnshRaj112/socialapp-backend/internal/logging"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "socialapp",
	Short: "Social app backend",
	Long: `Social app backend: accounts, posts, comments, likes, follows and
notifications over a JSON API. Runs the server when no command is given.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads .env and the configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	envErr := godotenv.Load()

	cfg := config.Load()
	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if envErr != nil {
		log.Debug("no .env file found")
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return nil, nil, err
	}
	return cfg, log, nil
}
