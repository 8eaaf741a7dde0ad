package usecase

import (
	"errors"
	"fmt"

	"github.com/user/fathom-scraper/internal/repository"
)

var (
	// ErrAuthenticationRequired means the share page redirected to a login form.
	// No credentials are configured, so the attempt cannot recover.
	ErrAuthenticationRequired = errors.New("redirected to login page, authentication required")
	// ErrUnexpectedRedirect means navigation ended off the share page with no login form.
	ErrUnexpectedRedirect = errors.New("redirected to unexpected URL")
	// ErrTranscriptContainerNotFound means the transcript element never attached.
	ErrTranscriptContainerNotFound = fmt.Errorf("transcript container not found: %w", repository.ErrElementNotFound)
	// ErrPayloadParse means the structured-data payload could not be decoded.
	ErrPayloadParse = errors.New("structured-data payload could not be parsed")
)

// errorType buckets an attempt error for metrics labels.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, repository.ErrNavigationTimeout):
		return "navigation_timeout"
	case errors.Is(err, ErrAuthenticationRequired):
		return "authentication_required"
	case errors.Is(err, ErrUnexpectedRedirect):
		return "unexpected_redirect"
	case errors.Is(err, repository.ErrElementNotFound):
		return "element_not_found"
	case errors.Is(err, repository.ErrWaitTimeout):
		return "wait_timeout"
	default:
		return "unknown"
	}
}
