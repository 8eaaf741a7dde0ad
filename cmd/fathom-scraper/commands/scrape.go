package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/pkg/config"
	"github.com/user/fathom-scraper/pkg/metrics"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape metadata|transcript <url>",
	Short: "Scrape a single share page and print the result",
	Long: `Run one scrape with the same retry policy as the HTTP services and print
the result to stdout. Logs go to stderr.`,
	Args: cobra.MatchAll(cobra.ExactArgs(2), func(cmd *cobra.Command, args []string) error {
		return cobra.OnlyValidArgs(cmd, args[:1])
	}),
	ValidArgs: []string{config.ServiceMetadata, config.ServiceTranscript},
	RunE:      runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().StringP("output", "o", formatJSON, "output format: json, yaml")
}

func runScrape(cmd *cobra.Command, args []string) error {
	service, videoURL := args[0], args[1]
	format, _ := cmd.Flags().GetString("output")
	if err := validateFormat(format); err != nil {
		return err
	}

	cfg, log, err := setup(cmd, service, os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	journal, closeJournal, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeJournal()

	deps := newDependencies(cfg, metrics.New(prometheus.NewRegistry()), journal, log)
	req := entity.ScrapeRequest{VideoURL: videoURL}

	var result any
	switch service {
	case config.ServiceMetadata:
		result = newMetadataScraper(cfg, deps).Scrape(ctx, req)
	default:
		result = entity.TranscriptResponse{Transcript: newTranscriptScraper(cfg, deps).Scrape(ctx, req)}
	}
	return writeOutput(cmd.OutOrStdout(), format, result)
}
