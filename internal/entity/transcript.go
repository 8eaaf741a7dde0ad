package entity

// Sentinel transcript values. A transcript result is never empty.
const (
	NoTranscriptFound     = "No transcript found."
	TranscriptUnavailable = "Transcript unavailable"
	TranscriptErrorPrefix = "Error scraping transcript: "
)

// TranscriptResponse is the body returned by /scrape-transcript.
type TranscriptResponse struct {
	Transcript string `json:"transcript" yaml:"transcript"`
}
