package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/adflow/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the stage graph as Mermaid",
	Long:  `Outputs a Mermaid diagram (graph TD) of the stage table. With --session, the stages the session visited and its current stage are highlighted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if check, _ := cmd.Flags().GetBool("check"); check {
			return cli.CheckGraph(cmd.OutOrStdout())
		}
		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			return cli.PrintGraph(cmd.Context(), nil, "", cmd.OutOrStdout())
		}
		store, closeFn, err := sessionStore(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		return cli.PrintGraph(cmd.Context(), store, sessionID, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Session whose progress to overlay")
	graphCmd.Flags().Bool("check", false, "Validate the stage table instead of printing it")
}
