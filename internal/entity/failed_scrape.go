package entity

import "time"

// FailedScrape mirrors the `failed_scrapes` journal schema. It records why a
// request exhausted its retries; scraped content is never stored.
type FailedScrape struct {
	URL                  string     `json:"url" yaml:"url"`
	Kind                 ScrapeKind `json:"kind" yaml:"kind"`
	FailureReason        string     `json:"failure_reason" yaml:"failure_reason"`
	Attempts             int        `json:"attempts" yaml:"attempts"`
	FailureCount         int        `json:"failure_count" yaml:"failure_count"`
	LastAttemptTimestamp time.Time  `json:"last_attempt_timestamp" yaml:"last_attempt_timestamp"`
}
