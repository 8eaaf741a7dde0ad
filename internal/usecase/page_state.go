package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
)

// DefaultSharePattern is the substring every on-target share page URL contains.
const DefaultSharePattern = "fathom.video/share"

var loginFormLocator = repository.Locator{CSS: `input[name="email"], input[type="email"]`}

// PageClassifier decides whether a navigation landed on the share page.
type PageClassifier struct {
	sharePattern string
	logger       *slog.Logger
}

func NewPageClassifier(sharePattern string, log *slog.Logger) *PageClassifier {
	if sharePattern == "" {
		sharePattern = DefaultSharePattern
	}
	return &PageClassifier{sharePattern: sharePattern, logger: logger.OrDefault(log)}
}

// Classify looks at the URL only: OnTarget when it matches the share pattern,
// UnknownRedirect otherwise. DetectLoginForm refines the latter.
func (c *PageClassifier) Classify(currentURL string) entity.PageState {
	if strings.Contains(currentURL, c.sharePattern) {
		return entity.OnTarget
	}
	return entity.UnknownRedirect
}

// DetectLoginForm probes for an email input. A failed probe counts as no form.
func (c *PageClassifier) DetectLoginForm(ctx context.Context, page repository.Page) bool {
	found, err := page.Exists(ctx, loginFormLocator)
	if err != nil {
		c.logger.Warn("Login form probe failed", "error", err)
		return false
	}
	return found
}

// Resolve classifies the page and converts both redirect states into errors.
func (c *PageClassifier) Resolve(ctx context.Context, page repository.Page, currentURL string) (entity.PageState, error) {
	if c.Classify(currentURL) == entity.OnTarget {
		return entity.OnTarget, nil
	}
	c.logger.Info("Redirected off the share page, checking for login", "current_url", currentURL)
	if c.DetectLoginForm(ctx, page) {
		return entity.LoginRedirect, fmt.Errorf("%w: %s", ErrAuthenticationRequired, currentURL)
	}
	return entity.UnknownRedirect, fmt.Errorf("%w: %s", ErrUnexpectedRedirect, currentURL)
}
