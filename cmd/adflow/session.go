package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/adflow/internal/cli"
	"github.com/aretw0/adflow/internal/config"
	"github.com/aretw0/adflow/pkg/persistence/middleware"
	"github.com/aretw0/adflow/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persisted sessions",
	Long: `List, inspect and remove sessions in the configured store.
With the in-memory store configured, the file store at store.path is used instead.
Access tokens are always shown masked.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return cli.ListSessions(cmd.Context(), store, cmd.OutOrStdout())
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Print the state of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return cli.InspectSession(cmd.Context(), store, args[0], cmd.OutOrStdout())
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeFn, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return cli.RemoveSessions(cmd.Context(), store, args, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

// sessionStore opens a redacted view of the configured store; an in-memory
// one would always be empty here, so the file store takes its place.
func sessionStore(cmd *cobra.Command) (ports.StateStore, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.Kind == config.StoreMemory || cfg.Store.Kind == config.StoreLRU {
		cfg.Store.Kind = config.StoreFile
	}
	store, _, closeFn, err := cli.OpenStore(cfg.Store, cli.NewLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	if closeFn == nil {
		closeFn = func() error { return nil }
	}
	return middleware.Chain(store, middleware.NewRedactionMiddleware()), closeFn, nil
}
