package commands

import (
	"context"
	"fmt"
	"mfscraper/internal/components/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

var rootCmd = &cobra.Command{
	Use:   "mfscraper",
	Short: "mfscraper is a CLI for reading and editing a Money Forward ME ledger.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(os.Stderr, *verbose)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String(
		"config", "",
		fmt.Sprintf("Path to the config file, %s is searched for upwards from the working directory by default.", configName),
	)
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log requests and other debug output.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every request and response to files in this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
