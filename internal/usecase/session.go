package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
	"github.com/user/fathom-scraper/pkg/metrics"
)

// BrowserSession owns the browser lifecycle of one attempt.
type BrowserSession struct {
	browser repository.Browser
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewBrowserSession(browser repository.Browser, m *metrics.Metrics, log *slog.Logger) *BrowserSession {
	if m == nil {
		m = metrics.Discard()
	}
	return &BrowserSession{browser: browser, metrics: m, logger: logger.OrDefault(log)}
}

// Acquire launches a fresh browser and page.
func (s *BrowserSession) Acquire(ctx context.Context) (repository.Page, error) {
	s.logger.Debug("Launching browser")
	page, err := s.browser.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire browser session: %w", err)
	}
	s.metrics.BrowserSessionsActive.Inc()
	return page, nil
}

// Navigate loads url under the given wait policy and returns where the page ended up.
func (s *BrowserSession) Navigate(ctx context.Context, page repository.Page, url string, policy repository.WaitPolicy, timeout time.Duration) (string, error) {
	s.logger.Info("Navigating", "url", url, "wait", policy.String(), "timeout", timeout.String())
	current, err := page.Navigate(ctx, url, policy, timeout)
	if err != nil {
		return "", err
	}
	s.logger.Info("Navigation completed", "current_url", current)
	return current, nil
}

// Release closes the page. Failures are logged and counted, never returned.
func (s *BrowserSession) Release(page repository.Page) {
	s.metrics.BrowserSessionsActive.Dec()
	if err := page.Close(); err != nil {
		s.metrics.SessionCleanupFailures.Inc()
		s.logger.Error("Browser close failed", "error", err)
		return
	}
	s.logger.Debug("Browser closed")
}

// With runs fn against a fresh page and releases it on every exit path.
func (s *BrowserSession) With(ctx context.Context, fn func(page repository.Page) error) error {
	page, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.Release(page)
	return fn(page)
}
