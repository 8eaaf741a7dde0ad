// Package commands implements the fathom-scraper CLI.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/fathom-scraper/pkg/config"
	"github.com/user/fathom-scraper/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "fathom-scraper",
	Short: "Headless-browser scraper for Fathom call share pages",
	Long: `fathom-scraper extracts call metadata and transcripts from Fathom
share pages using a headless Chrome instance.

Examples:
  # Run the metadata HTTP service on :6000
  fathom-scraper serve metadata

  # Run the transcript HTTP service on a custom port
  fathom-scraper serve transcript --port 5050

  # Scrape one page from the command line
  fathom-scraper scrape metadata "https://fathom.video/share/abc" --output yaml

  # Show requests that exhausted their retries
  fathom-scraper failures list --limit 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "optional env file loaded before reading the environment")
	flags.String("log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL or info)")

	_ = viper.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}

// setup loads configuration for service and installs the JSON logger on logOut.
func setup(cmd *cobra.Command, service string, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(viper.GetViper(), service, envFile)
	if err != nil {
		return nil, nil, err
	}
	log := logger.Init(logOut, logger.ParseLevel(cfg.LogLevel))
	log.Debug("Configuration loaded", "service", cfg.Service, "journal", cfg.JournalBackend)
	return cfg, log, nil
}
