package repository

import (
	"context"

	"github.com/user/fathom-scraper/internal/entity"
)

// FailedScrapeRepository journals scrape requests that exhausted their retries.
type FailedScrapeRepository interface {
	// SaveOrUpdate creates or updates the record for (URL, Kind), incrementing its failure count.
	SaveOrUpdate(ctx context.Context, failed *entity.FailedScrape) error
	// Delete removes the record, typically after a later successful scrape.
	Delete(ctx context.Context, url string, kind entity.ScrapeKind) error
	// FindRecent returns the most recently failed records, newest first.
	FindRecent(ctx context.Context, limit int) ([]*entity.FailedScrape, error)
}
