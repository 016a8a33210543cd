package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/adflow/internal/cli"
	"github.com/aretw0/adflow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "adflow",
	Short: "adflow orchestrates conversational ad-creative sessions",
	Long: `adflow walks a session from a product page to a published ad campaign:
analysis, scripts, images, voice, avatar video and campaign setup, one stage per message.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Config file (YAML or JSON)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, lru, file or redis")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file, then lets explicit flags win over file and env.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	return cfg, cfg.Validate()
}

func loadApp(cmd *cobra.Command) (*cli.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := cli.NewLogger(cfg)
	slog.SetDefault(logger)
	return cli.NewApp(cfg, logger)
}
