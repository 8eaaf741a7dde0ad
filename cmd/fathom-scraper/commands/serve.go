package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/fathom-scraper/internal/delivery/http/handler"
	"github.com/user/fathom-scraper/internal/delivery/http/router"
	"github.com/user/fathom-scraper/pkg/config"
	"github.com/user/fathom-scraper/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:       "serve metadata|transcript",
	Short:     "Run the metadata or transcript HTTP service",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{config.ServiceMetadata, config.ServiceTranscript},
	RunE:      runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "listen port (default $PORT, 6000 for metadata, 5000 for transcript)")
	_ = viper.BindPFlag("PORT", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	service := args[0]
	cfg, log, err := setup(cmd, service, os.Stdout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	log.Info("Metrics initialized")

	journal, closeJournal, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeJournal()

	deps := newDependencies(cfg, m, journal, log)
	var h *handler.Handler
	switch service {
	case config.ServiceMetadata:
		h = handler.NewHandler(newMetadataScraper(cfg, deps), nil, handler.MetadataLiveness, log)
	default:
		h = handler.NewHandler(nil, newTranscriptScraper(cfg, deps), handler.TranscriptLiveness, log)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(h, m, reg, log),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", "service", service, "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Could not listen on port", "port", cfg.Port, "error", err)
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return err
	}
	log.Info("Server exiting")
	return nil
}
