package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aretw0/adflow/internal/cli"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with a session in the terminal",
	Long: `Starts an interactive session. Paste a product URL to begin, then give
feedback or say "next". Type /state to dump the session, /goto <stage> to jump,
exit to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()
		return cli.RunChat(sigCtx, app, cli.ChatOptions{
			SessionID: sessionID,
			Plain:     plain,
			Input:     cmd.InOrStdin(),
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume or create")
	chatCmd.Flags().Bool("plain", false, "Disable the banner and markdown rendering")
}
