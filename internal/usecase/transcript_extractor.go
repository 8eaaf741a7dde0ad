package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
)

const (
	DefaultTranscriptContainer = "page-call-detail-transcript"
	DefaultResponseMarker      = "transcript"
)

// DefaultRevealLocators are probed in order; the first present one is clicked.
var DefaultRevealLocators = []repository.Locator{
	{CSS: "button", Text: "transcript"},
	{CSS: "button", Text: "show transcript"},
	{CSS: `[aria-label*="transcript"]`},
	{CSS: `[role="button"][aria-label*="captions"]`},
}

type TranscriptExtractorConfig struct {
	Container        string
	RevealLocators   []repository.Locator
	Strategies       []TextStrategy
	ResponseMarker   string
	ContainerTimeout time.Duration
	ContentTimeout   time.Duration
	// ResponseTimeout of zero skips the corroborating response wait.
	ResponseTimeout time.Duration
}

// TranscriptExtractor scrapes transcript lines from an on-target share page.
type TranscriptExtractor struct {
	cfg    TranscriptExtractorConfig
	logger *slog.Logger
}

func NewTranscriptExtractor(cfg TranscriptExtractorConfig, log *slog.Logger) *TranscriptExtractor {
	if cfg.Container == "" {
		cfg.Container = DefaultTranscriptContainer
	}
	if cfg.RevealLocators == nil {
		cfg.RevealLocators = DefaultRevealLocators
	}
	if cfg.Strategies == nil {
		cfg.Strategies = DefaultTranscriptStrategies(cfg.Container)
	}
	if cfg.ResponseMarker == "" {
		cfg.ResponseMarker = DefaultResponseMarker
	}
	if cfg.ContainerTimeout <= 0 {
		cfg.ContainerTimeout = 300 * time.Second
	}
	if cfg.ContentTimeout <= 0 {
		cfg.ContentTimeout = 300 * time.Second
	}
	return &TranscriptExtractor{cfg: cfg, logger: logger.OrDefault(log)}
}

// contentReadyScript is truthy once the container has rendered any text.
func contentReadyScript(container string) string {
	return fmt.Sprintf(`(() => {
	const c = document.querySelector(%q);
	return !!c && ((c.innerText || '').length > 0 ||
		Array.from(c.querySelectorAll('*')).some(el => (el.innerText || '').trim().length > 0));
})()`, container)
}

// Extract returns the joined transcript, or NoTranscriptFound when the page
// rendered no usable lines. Errors mean the attempt itself failed.
func (e *TranscriptExtractor) Extract(ctx context.Context, page repository.Page) (string, error) {
	if err := page.WaitAttached(ctx, e.cfg.Container, e.cfg.ContainerTimeout); err != nil {
		e.logger.Error("Transcript container not found", "selector", e.cfg.Container, "error", err)
		return "", fmt.Errorf("%w: %v", ErrTranscriptContainerNotFound, err)
	}
	e.logger.Info("Transcript container found")

	e.reveal(ctx, page)

	if err := page.WaitForFunction(ctx, contentReadyScript(e.cfg.Container), e.cfg.ContentTimeout); err != nil {
		return "", fmt.Errorf("wait for transcript content: %w", err)
	}

	if e.cfg.ResponseTimeout > 0 {
		marker := e.cfg.ResponseMarker
		err := page.WaitForResponse(ctx, func(url string, status int) bool {
			return status == 200 && strings.Contains(url, marker)
		}, e.cfg.ResponseTimeout)
		if err != nil {
			e.logger.Info("No transcript response observed, proceeding with DOM scraping", "error", err)
		} else {
			e.logger.Info("Transcript response received")
		}
	}

	lines := e.collect(ctx, page)
	if len(lines) == 0 {
		return entity.NoTranscriptFound, nil
	}
	e.logger.Info("Transcript scraped", "lines", len(lines))
	return strings.Join(lines, "\n"), nil
}

// reveal clicks the first present reveal control. Missing controls are normal.
func (e *TranscriptExtractor) reveal(ctx context.Context, page repository.Page) {
	for _, loc := range e.cfg.RevealLocators {
		found, err := page.Exists(ctx, loc)
		if err != nil {
			e.logger.Debug("Reveal probe failed", "selector", loc.CSS, "text", loc.Text, "error", err)
			continue
		}
		if !found {
			continue
		}
		e.logger.Info("Transcript button found, clicking", "selector", loc.CSS, "text", loc.Text)
		if err := page.Click(ctx, loc); err != nil {
			e.logger.Warn("Transcript button click failed", "error", err)
		}
		return
	}
	e.logger.Info("Transcript button not found, proceeding without click")
}

func (e *TranscriptExtractor) collect(ctx context.Context, page repository.Page) []string {
	for _, strategy := range e.cfg.Strategies {
		lines, err := strategy.Collect(ctx, page)
		if err != nil {
			e.logger.Warn("Transcript strategy failed", "strategy", strategy.Name(), "error", err)
			continue
		}
		if len(lines) > 0 {
			e.logger.Debug("Transcript strategy matched", "strategy", strategy.Name(), "lines", len(lines))
			return lines
		}
		e.logger.Debug("Transcript strategy found nothing", "strategy", strategy.Name())
	}
	return nil
}
