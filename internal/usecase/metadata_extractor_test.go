package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/user/fathom-scraper/internal/entity"
)

func newTestMetadataExtractor() *MetadataExtractor {
	return NewMetadataExtractor(MetadataExtractorConfig{AttachTimeout: time.Second}, discardLogger())
}

func assertFullyPopulated(t *testing.T, rec entity.CallRecord) {
	t.Helper()
	for name, v := range map[string]string{
		"CallDate":        rec.CallDate,
		"SalespersonName": rec.SalespersonName,
		"ProspectName":    rec.ProspectName,
		"CallDuration":    rec.CallDuration,
		"TranscriptLink":  rec.TranscriptLink,
		"Title":           rec.Title,
	} {
		assert.NotEmpty(t, v, "field %s", name)
	}
	assert.Empty(t, rec.Error)
}

func TestMetadataExtractorReadsPayload(t *testing.T) {
	page := newFakePage("https://fathom.video/share/abc")
	page.attached["#app"] = true
	page.attrs["#app|data-page"] = `{"props":{"call":{"started_at":"2024-03-15T10:00:00Z","host":{"email":"rep@example.com"},"byline":"Acme","title":"Discovery"},"duration":125}}`

	rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
	assert.Equal(t, entity.CallRecord{
		CallDate:        "2024-03-15",
		SalespersonName: "rep@example.com",
		ProspectName:    "Acme",
		CallDuration:    "2 minutes 5 seconds",
		TranscriptLink:  "https://fathom.video/share/abc",
		Title:           "Discovery",
	}, rec)
}

func TestMetadataExtractorMalformedPayloadsNeverFail(t *testing.T) {
	for _, raw := range []string{"{", "null", "[]", `{"props":"x"}`, `<div>`, `{'props':{'call':`} {
		page := newFakePage("https://fathom.video/share/abc")
		page.attached["#app"] = true
		page.attrs["#app|data-page"] = raw

		rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
		assertFullyPopulated(t, rec)
		assert.Equal(t, "1970-01-01", rec.CallDate, "payload %q", raw)
		assert.Equal(t, "No Title", rec.Title)
	}
}

func TestMetadataExtractorMissingContainerKeepsNoTitle(t *testing.T) {
	page := newFakePage("https://fathom.video/share/abc")
	page.title = "Fathom"

	rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
	assertFullyPopulated(t, rec)
	assert.Equal(t, "No Title", rec.Title)
	assert.Equal(t, "Unknown", rec.ProspectName)
	assert.Equal(t, "https://fathom.video/share/abc", rec.TranscriptLink)
}

func TestMetadataExtractorCallWithoutTitleUsesPageTitle(t *testing.T) {
	page := newFakePage("https://fathom.video/share/abc")
	page.title = "Weekly sync"
	page.attached["#app"] = true
	page.attrs["#app|data-page"] = `{"props":{"call":{"byline":"Acme"}}}`

	rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
	assert.Equal(t, "Weekly sync", rec.Title)
	assert.Equal(t, "Acme", rec.ProspectName)
}

func TestMetadataExtractorKeepsValidFieldsBesideMalformedOnes(t *testing.T) {
	cases := map[string]struct {
		raw      string
		date     string
		duration string
	}{
		"bad duration": {
			raw:      `{"props":{"call":{"byline":"Acme","title":"Discovery","host":{"email":"rep@example.com"}},"duration":"abc"}}`,
			date:     "1970-01-01",
			duration: "0 minutes 0 seconds",
		},
		"numeric started_at": {
			raw:      `{"props":{"call":{"started_at":1710496800000,"byline":"Acme","title":"Discovery","host":{"email":"rep@example.com"}},"duration":125}}`,
			date:     "2024-03-15",
			duration: "2 minutes 5 seconds",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			page := newFakePage("https://fathom.video/share/abc")
			page.title = "Fathom"
			page.attached["#app"] = true
			page.attrs["#app|data-page"] = tc.raw

			rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
			assert.Equal(t, entity.CallRecord{
				CallDate:        tc.date,
				SalespersonName: "rep@example.com",
				ProspectName:    "Acme",
				CallDuration:    tc.duration,
				TranscriptLink:  "https://fathom.video/share/abc",
				Title:           "Discovery",
			}, rec)
		})
	}
}

func TestMetadataExtractorMissingAttribute(t *testing.T) {
	page := newFakePage("https://fathom.video/share/abc")
	page.attached["#app"] = true

	rec := newTestMetadataExtractor().Extract(context.Background(), page, "https://fathom.video/share/abc")
	assertFullyPopulated(t, rec)
	assert.Equal(t, "0 minutes 0 seconds", rec.CallDuration)
}
