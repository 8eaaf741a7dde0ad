package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
	"github.com/user/fathom-scraper/pkg/metrics"
	"github.com/user/fathom-scraper/pkg/utils"
)

const journalTimeout = 5 * time.Second

// MetadataScraper serves /scrape-metadata.
type MetadataScraper interface {
	Scrape(ctx context.Context, req entity.ScrapeRequest) entity.CallRecord
}

// TranscriptScraper serves /scrape-transcript.
type TranscriptScraper interface {
	Scrape(ctx context.Context, req entity.ScrapeRequest) string
}

// Dependencies shared by both scrapers. Journal may be nil.
type Dependencies struct {
	Session    *BrowserSession
	Classifier *PageClassifier
	Journal    repository.FailedScrapeRepository
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Scraper is the navigate → classify → extract pipeline wrapped in Retry.
// Metadata and transcript scraping are two instantiations of it.
type Scraper[T any] struct {
	kind       entity.ScrapeKind
	deps       Dependencies
	waitPolicy repository.WaitPolicy
	navTimeout time.Duration
	policy     RetryPolicy[T]
	extract    func(ctx context.Context, page repository.Page, videoURL string) (T, error)
	// failed converts an attempt error into the value reported for that attempt.
	failed func(videoURL string, err error) T
	// reason describes a failed value for the journal.
	reason func(value T, err error) string
	logger *slog.Logger
}

type MetadataOptions struct {
	MaxAttempts       int
	RetryDelay        time.Duration
	NavigationTimeout time.Duration
	Extractor         *MetadataExtractor
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Metrics == nil {
		d.Metrics = metrics.Discard()
	}
	d.Logger = logger.OrDefault(d.Logger)
	return d
}

// NewMetadataScraper waits for the load event and retries until a record carries no error.
// After exhausting attempts the last record is returned as-is.
func NewMetadataScraper(deps Dependencies, opts MetadataOptions) *Scraper[entity.CallRecord] {
	deps = deps.withDefaults()
	extractor := opts.Extractor
	return &Scraper[entity.CallRecord]{
		kind:       entity.KindMetadata,
		deps:       deps,
		waitPolicy: repository.WaitLoad,
		navTimeout: opts.NavigationTimeout,
		policy: RetryPolicy[entity.CallRecord]{
			MaxAttempts: opts.MaxAttempts,
			Delay:       opts.RetryDelay,
			Succeeded:   func(rec entity.CallRecord) bool { return rec.Error == "" },
		},
		extract: func(ctx context.Context, page repository.Page, videoURL string) (entity.CallRecord, error) {
			return extractor.Extract(ctx, page, videoURL), nil
		},
		failed: entity.FailedCallRecord,
		reason: func(rec entity.CallRecord, err error) string {
			if err != nil {
				return err.Error()
			}
			return rec.Error
		},
		logger: deps.Logger,
	}
}

type TranscriptOptions struct {
	MaxAttempts       int
	RetryDelay        time.Duration
	NavigationTimeout time.Duration
	Extractor         *TranscriptExtractor
}

// IsTranscriptFailure reports whether a transcript result is a failure string rather than content.
func IsTranscriptFailure(result string) bool {
	return result == "" ||
		strings.HasPrefix(result, entity.TranscriptErrorPrefix) ||
		strings.HasPrefix(result, entity.TranscriptUnavailable)
}

// NewTranscriptScraper waits for network idle and folds attempt errors into
// the result string. After exhausting attempts it returns TranscriptUnavailable.
func NewTranscriptScraper(deps Dependencies, opts TranscriptOptions) *Scraper[string] {
	deps = deps.withDefaults()
	extractor := opts.Extractor
	return &Scraper[string]{
		kind:       entity.KindTranscript,
		deps:       deps,
		waitPolicy: repository.WaitNetworkIdle,
		navTimeout: opts.NavigationTimeout,
		policy: RetryPolicy[string]{
			MaxAttempts: opts.MaxAttempts,
			Delay:       opts.RetryDelay,
			Succeeded:   func(s string) bool { return !IsTranscriptFailure(s) },
			Exhausted:   func(string) string { return entity.TranscriptUnavailable },
		},
		extract: func(ctx context.Context, page repository.Page, _ string) (string, error) {
			return extractor.Extract(ctx, page)
		},
		failed: func(_ string, err error) string {
			return entity.TranscriptErrorPrefix + err.Error()
		},
		reason: func(s string, err error) string {
			if err != nil {
				return err.Error()
			}
			return s
		},
		logger: deps.Logger,
	}
}

// Scrape runs the attempt chain for one request. It never fails; the result
// always has the stable output shape.
func (s *Scraper[T]) Scrape(ctx context.Context, req entity.ScrapeRequest) T {
	log := s.logger.With("scrape_id", uuid.NewString(), "kind", string(s.kind), "url", req.VideoURL)
	start := time.Now()

	out := Retry(ctx, s.policy, func(ctx context.Context, attempt int) (T, error) {
		attemptLog := log.With("attempt", attempt, "max_attempts", s.policy.MaxAttempts)
		attemptLog.Info("Starting scrape attempt")
		value, err := s.attempt(ctx, req.VideoURL, attemptLog)
		switch {
		case err != nil:
			attemptLog.Error("Scrape attempt failed", "error", err)
			s.deps.Metrics.ObserveAttempt(string(s.kind), "failure", errorType(err))
		case s.policy.Succeeded != nil && !s.policy.Succeeded(value):
			attemptLog.Warn("Scrape attempt produced a failure result")
			s.deps.Metrics.ObserveAttempt(string(s.kind), "failure", "result")
		default:
			s.deps.Metrics.ObserveAttempt(string(s.kind), "success", "")
		}
		return value, err
	})

	outcome := "success"
	if !out.Succeeded {
		outcome = "exhausted"
	}
	s.deps.Metrics.ObserveRequest(string(s.kind), outcome, utils.Host(req.VideoURL), time.Since(start).Seconds())
	log.Info("Scrape finished", "outcome", outcome, "attempts", out.Attempts, "duration_ms", time.Since(start).Milliseconds())

	s.journal(ctx, req.VideoURL, out, log)
	return out.Value
}

// attempt owns one browser session end to end.
func (s *Scraper[T]) attempt(ctx context.Context, videoURL string, log *slog.Logger) (T, error) {
	var value T
	err := s.deps.Session.With(ctx, func(page repository.Page) error {
		current, err := s.deps.Session.Navigate(ctx, page, videoURL, s.waitPolicy, s.navTimeout)
		if err != nil {
			return err
		}
		state, err := s.deps.Classifier.Resolve(ctx, page, current)
		if err != nil {
			log.Warn("Page is not the share page", "state", state.String())
			return err
		}
		value, err = s.extract(ctx, page, videoURL)
		return err
	})
	if err != nil {
		return s.failed(videoURL, err), err
	}
	return value, nil
}

// journal records exhausted requests and clears earlier records on success.
// Journal errors are logged only.
func (s *Scraper[T]) journal(ctx context.Context, videoURL string, out Outcome[T], log *slog.Logger) {
	if s.deps.Journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()

	if out.Succeeded {
		if err := s.deps.Journal.Delete(jctx, videoURL, s.kind); err != nil {
			log.Warn("Failed to clear failure journal entry", "error", err)
		}
		return
	}

	failed := &entity.FailedScrape{
		URL:                  videoURL,
		Kind:                 s.kind,
		FailureReason:        s.reason(out.Value, out.LastErr),
		Attempts:             out.Attempts,
		LastAttemptTimestamp: time.Now().UTC(),
	}
	if err := s.deps.Journal.SaveOrUpdate(jctx, failed); err != nil {
		log.Error("Failed to journal exhausted scrape", "error", err)
	}
}
