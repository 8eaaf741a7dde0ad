package request

import "github.com/user/fathom-scraper/internal/entity"

// ScrapeRequest is the body accepted by both scrape endpoints.
type ScrapeRequest struct {
	VideoURL string `json:"videoUrl" validate:"required"`
}

func (r ScrapeRequest) ToEntity() entity.ScrapeRequest {
	return entity.ScrapeRequest{VideoURL: r.VideoURL}
}
