package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePayloadRewriteTable(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single quotes become double", `{'a':'b'}`, `{"a":"b"}`},
		{"escaped double quotes collapse", `{\"a\":\"b\"}`, `{"a":"b"}`},
		{"escaped single quote collapses after rewrite", `{"a":"\'b\'"}`, `{"a":""b""}`},
		{"clean JSON untouched", `{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizePayload(tc.in))
		})
	}
}

func TestDecodePayloadWellFormed(t *testing.T) {
	raw := `{"component":"CallDetail","props":{"call":{"started_at":"2024-03-15T10:00:00Z","host":{"email":"rep@example.com"},"byline":"Acme Corp","title":"Discovery","video_url":"https://fathom.video/calls/1"},"duration":125}}`

	p, err := DecodePayload(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Props.Call)
	assert.Equal(t, "2024-03-15T10:00:00Z", p.Props.Call.StartedAt)
	assert.Equal(t, "rep@example.com", p.Props.Call.Host.Email)
	assert.Equal(t, "Acme Corp", p.Props.Call.Byline)
	assert.Equal(t, "Discovery", p.Props.Call.Title)
	assert.Equal(t, "https://fathom.video/calls/1", p.Props.Call.VideoURL)
	assert.Equal(t, Seconds(125), p.Props.Duration)
}

func TestDecodePayloadSingleQuoted(t *testing.T) {
	p, err := DecodePayload(`{'props':{'call':{'byline':'Acme'},'duration':'59.6'}}`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Props.Call.Byline)
	assert.InDelta(t, 59.6, float64(p.Props.Duration), 1e-9)
}

func TestDecodePayloadFallsBackToJSON5ForApostrophes(t *testing.T) {
	p, err := DecodePayload(`{'props': {'call': {'title': "Bob's sync"}}}`)
	require.NoError(t, err)
	require.NotNil(t, p.Props.Call)
	assert.Equal(t, "Bob's sync", p.Props.Call.Title)
}

func TestDecodePayloadMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "{not json", "<html>"} {
		_, err := DecodePayload(raw)
		assert.ErrorIs(t, err, ErrPayloadParse, "input %q", raw)
	}
}

func TestDecodePayloadNullDuration(t *testing.T) {
	p, err := DecodePayload(`{"props":{"duration":null,"call":null}}`)
	require.NoError(t, err)
	assert.Nil(t, p.Props.Call)
	assert.Equal(t, Seconds(0), p.Props.Duration)
}

func TestDecodePayloadKeepsGoodFieldsBesideBadOnes(t *testing.T) {
	raw := `{"props":{"call":{"started_at":true,"host":"rep","byline":"Acme","title":42,"video_url":"https://fathom.video/calls/1"},"duration":"abc"}}`

	p, err := DecodePayload(raw)
	require.NoError(t, err)
	require.NotNil(t, p.Props.Call)
	assert.Equal(t, "Acme", p.Props.Call.Byline)
	assert.Equal(t, "https://fathom.video/calls/1", p.Props.Call.VideoURL)
	assert.Empty(t, p.Props.Call.StartedAt)
	assert.Empty(t, p.Props.Call.Title)
	assert.Nil(t, p.Props.Call.Host)
	assert.Equal(t, Seconds(0), p.Props.Duration)
}

func TestDecodePayloadEpochMillisStartedAt(t *testing.T) {
	p, err := DecodePayload(`{"props":{"call":{"started_at":1710496800000,"host":{"email":"rep@example.com"}},"duration":"125"}}`)
	require.NoError(t, err)
	require.NotNil(t, p.Props.Call)
	assert.Equal(t, "2024-03-15T10:00:00Z", p.Props.Call.StartedAt)
	assert.Equal(t, "rep@example.com", p.Props.Call.Host.Email)
	assert.Equal(t, Seconds(125), p.Props.Duration)
}

func TestDecodePayloadNonObjectProps(t *testing.T) {
	for _, raw := range []string{`null`, `[]`, `{"props":"x"}`, `{"props":{"call":"x","duration":[1]}}`} {
		p, err := DecodePayload(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Nil(t, p.Props.Call, "input %q", raw)
		assert.Equal(t, Seconds(0), p.Props.Duration, "input %q", raw)
	}
}
