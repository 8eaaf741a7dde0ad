package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/user/fathom-scraper/internal/entity"
	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
)

const (
	DefaultAppSelector   = "#app"
	DefaultDataAttribute = "data-page"
)

// MetadataExtractorConfig tunes where the payload lives and how long to wait for it.
type MetadataExtractorConfig struct {
	AppSelector   string
	DataAttribute string
	AttachTimeout time.Duration
}

// MetadataExtractor reads the embedded data-page payload into a CallRecord.
// Data-shape problems never fail it; they degrade to placeholder values.
type MetadataExtractor struct {
	cfg    MetadataExtractorConfig
	logger *slog.Logger
}

func NewMetadataExtractor(cfg MetadataExtractorConfig, log *slog.Logger) *MetadataExtractor {
	if cfg.AppSelector == "" {
		cfg.AppSelector = DefaultAppSelector
	}
	if cfg.DataAttribute == "" {
		cfg.DataAttribute = DefaultDataAttribute
	}
	if cfg.AttachTimeout <= 0 {
		cfg.AttachTimeout = 60 * time.Second
	}
	return &MetadataExtractor{cfg: cfg, logger: logger.OrDefault(log)}
}

// Extract always returns a fully populated record.
func (e *MetadataExtractor) Extract(ctx context.Context, page repository.Page, fallbackURL string) entity.CallRecord {
	raw := e.readPayload(ctx, page)

	var payload *PagePayload
	if raw != "" {
		decoded, err := DecodePayload(raw)
		if err != nil {
			e.logger.Error("Payload parse error, using placeholder values", "error", err)
		} else {
			payload = decoded
		}
	}

	pageTitle := ""
	if payload != nil && payload.Props.Call != nil && payload.Props.Call.Title == "" {
		title, err := page.Title(ctx)
		if err != nil {
			e.logger.Warn("Could not read page title", "error", err)
		}
		pageTitle = title
	}

	return NormalizeCall(payload, fallbackURL, pageTitle)
}

// readPayload returns the raw attribute, or "" when the container or attribute is missing.
func (e *MetadataExtractor) readPayload(ctx context.Context, page repository.Page) string {
	if err := page.WaitAttached(ctx, e.cfg.AppSelector, e.cfg.AttachTimeout); err != nil {
		e.logger.Warn("App container not found, using fallback data", "selector", e.cfg.AppSelector, "error", err)
		return ""
	}

	raw, ok, err := page.Attribute(ctx, e.cfg.AppSelector, e.cfg.DataAttribute)
	switch {
	case err != nil:
		e.logger.Warn("Could not read payload attribute", "attribute", e.cfg.DataAttribute, "error", err)
		return ""
	case !ok:
		e.logger.Info("Payload attribute not present", "attribute", e.cfg.DataAttribute)
		return ""
	}
	e.logger.Debug("Payload extracted", "bytes", len(raw))
	return raw
}
