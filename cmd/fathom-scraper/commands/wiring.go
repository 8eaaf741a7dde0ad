package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/user/fathom-scraper/internal/adapter/chromedp_browser"
	"github.com/user/fathom-scraper/internal/adapter/postgres"
	redis_adapter "github.com/user/fathom-scraper/internal/adapter/redis"
	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/internal/usecase"
	"github.com/user/fathom-scraper/pkg/config"
	"github.com/user/fathom-scraper/pkg/metrics"
)

const (
	journalNone     = "none"
	journalPostgres = "postgres"
	journalRedis    = "redis"
)

// openJournal connects the configured failure journal. The returned close
// func is always non-nil; the repository is nil when the journal is disabled.
func openJournal(ctx context.Context, cfg *config.Config, log *slog.Logger) (repository.FailedScrapeRepository, func(), error) {
	switch cfg.JournalBackend {
	case journalPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("unable to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("ping database: %w", err)
		}
		repo := postgres.NewFailedScrapeRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		log.Info("PostgreSQL failure journal ready")
		return repo, pool.Close, nil

	case journalRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, func() {}, fmt.Errorf("unable to connect to redis: %w", err)
		}
		log.Info("Redis failure journal ready", "ttl", cfg.JournalTTL.String())
		return redis_adapter.NewFailedScrapeRepo(rdb, cfg.JournalTTL, log), func() { _ = rdb.Close() }, nil

	default:
		log.Debug("Failure journal disabled")
		return nil, func() {}, nil
	}
}

func newDependencies(cfg *config.Config, m *metrics.Metrics, journal repository.FailedScrapeRepository, log *slog.Logger) usecase.Dependencies {
	browser := chromedp_browser.NewChromedpBrowser(chromedp_browser.Options{
		Headless:  cfg.Headless,
		ExecPath:  cfg.ChromePath,
		UserAgent: cfg.UserAgent,
	}, log)
	return usecase.Dependencies{
		Session:    usecase.NewBrowserSession(browser, m, log),
		Classifier: usecase.NewPageClassifier(cfg.SharePattern, log),
		Journal:    journal,
		Metrics:    m,
		Logger:     log,
	}
}

func newMetadataScraper(cfg *config.Config, deps usecase.Dependencies) *usecase.Scraper[entity.CallRecord] {
	return usecase.NewMetadataScraper(deps, usecase.MetadataOptions{
		MaxAttempts:       cfg.MetadataMaxAttempts,
		RetryDelay:        cfg.MetadataRetryDelay,
		NavigationTimeout: cfg.MetadataNavigationTimeout,
		Extractor: usecase.NewMetadataExtractor(usecase.MetadataExtractorConfig{
			AttachTimeout: cfg.MetadataAppTimeout,
		}, deps.Logger),
	})
}

func newTranscriptScraper(cfg *config.Config, deps usecase.Dependencies) *usecase.Scraper[string] {
	return usecase.NewTranscriptScraper(deps, usecase.TranscriptOptions{
		MaxAttempts:       cfg.TranscriptMaxAttempts,
		RetryDelay:        cfg.TranscriptRetryDelay,
		NavigationTimeout: cfg.TranscriptNavigationTimeout,
		Extractor: usecase.NewTranscriptExtractor(usecase.TranscriptExtractorConfig{
			ContainerTimeout: cfg.TranscriptContainerTimeout,
			ContentTimeout:   cfg.TranscriptContentTimeout,
			ResponseTimeout:  cfg.TranscriptResponseTimeout,
		}, deps.Logger),
	})
}
