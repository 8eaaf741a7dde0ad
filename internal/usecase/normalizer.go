package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/user/fathom-scraper/internal/entity"
)

// FormatCallDate renders a source timestamp as a UTC YYYY-MM-DD date.
// Absent or unparseable input yields the epoch date.
func FormatCallDate(timestamp string) string {
	timestamp = strings.TrimSpace(timestamp)
	if timestamp == "" {
		return entity.DefaultCallDate
	}
	t, err := dateparse.ParseIn(timestamp, time.UTC)
	if err != nil {
		return entity.DefaultCallDate
	}
	return t.UTC().Format("2006-01-02")
}

// FormatCallDuration renders seconds as "<m> minutes <s> seconds". Minutes are
// floored and the remainder is rounded, so 59.6 becomes "0 minutes 60 seconds".
func FormatCallDuration(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	minutes := math.Floor(seconds / 60)
	rest := math.Round(math.Mod(seconds, 60))
	return fmt.Sprintf("%d minutes %d seconds", int64(minutes), int64(rest))
}

// NormalizeCall builds a fully populated CallRecord from whatever the payload
// yielded. payload may be nil. pageTitle is only consulted when the payload
// carries a call without a title; no call at all keeps every placeholder.
func NormalizeCall(payload *PagePayload, fallbackURL, pageTitle string) entity.CallRecord {
	var duration float64
	if payload != nil {
		duration = float64(payload.Props.Duration)
	}

	rec := entity.CallRecord{
		CallDate:        entity.DefaultCallDate,
		SalespersonName: entity.UnknownValue,
		ProspectName:    entity.UnknownValue,
		CallDuration:    FormatCallDuration(duration),
		TranscriptLink:  fallbackURL,
		Title:           entity.NoTitle,
	}
	if payload == nil || payload.Props.Call == nil {
		return rec
	}

	call := payload.Props.Call
	rec.CallDate = FormatCallDate(call.StartedAt)
	rec.ProspectName = firstNonEmpty(call.Byline, entity.UnknownValue)
	rec.TranscriptLink = firstNonEmpty(call.VideoURL, fallbackURL)
	rec.Title = firstNonEmpty(call.Title, pageTitle, entity.NoTitle)
	if call.Host != nil {
		rec.SalespersonName = firstNonEmpty(call.Host.Email, entity.UnknownValue)
	}
	return rec
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
