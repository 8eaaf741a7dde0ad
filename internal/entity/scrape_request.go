package entity

// ScrapeKind names which extraction pipeline served a request.
type ScrapeKind string

const (
	KindMetadata   ScrapeKind = "metadata"
	KindTranscript ScrapeKind = "transcript"
)

// ScrapeRequest is the immutable input of one scrape.
type ScrapeRequest struct {
	VideoURL string
}
