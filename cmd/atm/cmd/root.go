package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-host-api/internal/client"
	"bank-host-api/internal/credential"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "atm",
	Short: "simulated ATM talking to the bank host",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("endpoint", "e", "http://localhost:8080", "bank host endpoint")
	_ = viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.SetEnvPrefix("atm")
	_ = viper.BindEnv("endpoint")
}

func newSession(cmd *cobra.Command) *client.Session {
	// the ATM only encodes; hashing cost is irrelevant here
	codec := credential.NewCodec(0)
	return client.NewSession(client.New(viper.GetString("endpoint"), nil), codec, cmd.OutOrStdout())
}
