package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/adflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of adflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "adflow version %s\n", strings.TrimSpace(adflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
