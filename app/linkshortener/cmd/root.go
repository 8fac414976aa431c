package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	utilKit "github.com/superj80820/link-shortener/kit/util"
)

var cfg config

var rootCmd = &cobra.Command{
	Use:           "linkshortener",
	Short:         "linkshortener serves and manages short links.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig loads the .env file before any command reads the environment.
// Variables already set in the process win.
func initConfig() {
	if err := utilKit.LoadEnvFile(utilKit.GetEnvString("ENV_FILE", ".env")); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg = loadConfig()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}
