package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bank-host-api/internal/client"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "run the scripted ATM walkthrough against the seeded accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), "ATM simulation initialized")

		return newSession(cmd).RunAll(cmd.Context(), client.DemoScenarios())
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
