package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dipErrors "github.com/maxkimambo/plz/internal/errors"
	"github.com/maxkimambo/plz/internal/logger"
)

var (
	configPath string
	clientID   string
	remoteURL  string
	dryRun     bool
	debug      bool
	verbose    bool
	jsonLogs   bool
	quiet      bool
	version    = "v0.1.0"

	rootCmd = &cobra.Command{
		Use:   "plz",
		Short: "Fire events and replay step-by-step tasks",
		Long: `plz runs tasks that react to events as a sequence of named, retryable steps.

A task can be called again with the ledger of a previous run: steps that
already succeeded are skipped, failed steps are retried up to their limit,
and the ledger is forwarded to the collector after every step.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(verbose || debug, jsonLogs, quiet)
			if debug {
				logger.Op.Debug("Debug logging enabled")
			}
		},
	}
)

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprint(os.Stderr, dipErrors.FormatForCLI(err))
	}
	return err
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "Client ID sent to the collector (env DO_IT_PLZ_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote-url", "", "Collector base URL (env DO_IT_PLZ_REMOTE_URL)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print what would be sent to the collector instead of sending it")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")

	rootCmd.AddCommand(serveCmd, fireCmd, callCmd, eventsCmd)
}
