package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/fathom-scraper/pkg/config"
)

var errJournalDisabled = errors.New("no failure journal configured, set JOURNAL_BACKEND to postgres or redis")

var failuresCmd = &cobra.Command{
	Use:   "failures",
	Short: "Inspect the failure journal",
}

var failuresListCmd = &cobra.Command{
	Use:   "list",
	Short: "List requests that exhausted their retries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runFailuresList,
}

func init() {
	rootCmd.AddCommand(failuresCmd)
	failuresCmd.AddCommand(failuresListCmd)

	flags := failuresListCmd.Flags()
	flags.Int("limit", 20, "maximum number of records to show")
	flags.StringP("output", "o", formatJSON, "output format: json, yaml")
}

func runFailuresList(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("output")
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, log, err := setup(cmd, config.ServiceMetadata, os.Stderr)
	if err != nil {
		return err
	}
	if cfg.JournalBackend == journalNone {
		return errJournalDisabled
	}

	ctx := context.Background()
	journal, closeJournal, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeJournal()

	records, err := journal.FindRecent(ctx, limit)
	if err != nil {
		return err
	}
	log.Debug("Failure journal read", "records", len(records))
	return writeOutput(cmd.OutOrStdout(), format, records)
}
