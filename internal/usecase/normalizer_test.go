package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/user/fathom-scraper/internal/entity"
)

func TestFormatCallDuration(t *testing.T) {
	cases := map[float64]string{
		125:  "2 minutes 5 seconds",
		0:    "0 minutes 0 seconds",
		59.6: "0 minutes 60 seconds",
		3600: "60 minutes 0 seconds",
		61.4: "1 minutes 1 seconds",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatCallDuration(in), "input %v", in)
	}
}

func TestFormatCallDate(t *testing.T) {
	assert.Equal(t, "1970-01-01", FormatCallDate(""))
	assert.Equal(t, "2024-03-15", FormatCallDate("2024-03-15T10:00:00Z"))
	assert.Equal(t, "2024-03-15", FormatCallDate("2024-03-15"))
	assert.Equal(t, "2024-03-16", FormatCallDate("2024-03-15T23:30:00-02:00"))
	assert.Equal(t, "1970-01-01", FormatCallDate("unknown"))
}

func TestNormalizeCallNilPayloadUsesPlaceholders(t *testing.T) {
	rec := NormalizeCall(nil, "https://fathom.video/share/abc", "")
	assert.Equal(t, entity.CallRecord{
		CallDate:        "1970-01-01",
		SalespersonName: "Unknown",
		ProspectName:    "Unknown",
		CallDuration:    "0 minutes 0 seconds",
		TranscriptLink:  "https://fathom.video/share/abc",
		Title:           "No Title",
	}, rec)
}

func TestNormalizeCallWithoutCallIgnoresPageTitle(t *testing.T) {
	assert.Equal(t, "No Title", NormalizeCall(nil, "https://fathom.video/share/abc", "Fathom").Title)
	assert.Equal(t, "No Title", NormalizeCall(&PagePayload{}, "https://fathom.video/share/abc", "Fathom").Title)
}

func TestNormalizeCallTitleFallsBackToPageTitle(t *testing.T) {
	p := &PagePayload{}
	p.Props.Call = &CallPayload{Byline: "Acme"}
	rec := NormalizeCall(p, "https://fathom.video/share/abc", "Weekly sync | Fathom")
	assert.Equal(t, "Weekly sync | Fathom", rec.Title)
	assert.Equal(t, "Acme", rec.ProspectName)
	assert.Equal(t, "Unknown", rec.SalespersonName)
}

func TestNormalizeCallFullPayload(t *testing.T) {
	p, err := DecodePayload(`{"props":{"call":{"started_at":"2024-03-15T10:00:00Z","host":{"email":"rep@example.com"},"byline":"Acme","title":"Discovery","video_url":"https://fathom.video/calls/1"},"duration":125}}`)
	assert.NoError(t, err)
	rec := NormalizeCall(p, "https://fathom.video/share/abc", "ignored")
	assert.Equal(t, entity.CallRecord{
		CallDate:        "2024-03-15",
		SalespersonName: "rep@example.com",
		ProspectName:    "Acme",
		CallDuration:    "2 minutes 5 seconds",
		TranscriptLink:  "https://fathom.video/calls/1",
		Title:           "Discovery",
	}, rec)
}
