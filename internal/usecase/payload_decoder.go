package usecase

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"
)

// rewriteRule is one literal substitution applied to a raw payload.
type rewriteRule struct {
	From string
	To   string
}

// payloadRewrites is applied in order before strict decoding. The source page
// sometimes serializes with single quotes and leaves escaped double quotes behind.
var payloadRewrites = []rewriteRule{
	{From: `'`, To: `"`},
	{From: `\"`, To: `"`},
}

// SanitizePayload applies payloadRewrites in order.
func SanitizePayload(raw string) string {
	for _, r := range payloadRewrites {
		raw = strings.ReplaceAll(raw, r.From, r.To)
	}
	return raw
}

// PagePayload is the subset of the share page's data-page blob we read.
type PagePayload struct {
	Props struct {
		Call     *CallPayload
		Duration Seconds
	}
}

// CallPayload holds props.call. Fields that were absent or of the wrong type are empty.
type CallPayload struct {
	StartedAt string
	Host      *CallHost
	Byline    string
	Title     string
	VideoURL  string
}

type CallHost struct {
	Email string
}

// Seconds is a call duration. Values that are not numeric decode to 0.
type Seconds float64

// DecodePayload decodes a data-page attribute leniently. The rewritten text is
// decoded strictly first; if that fails the raw text is decoded as JSON5,
// which tolerates single-quoted strings without corrupting apostrophes.
// Each field is then read on its own, so one malformed value never hides
// the others.
func DecodePayload(raw string) (*PagePayload, error) {
	tree, err := parsePayload(raw)
	if err != nil {
		return nil, err
	}
	return payloadFromTree(tree), nil
}

func parsePayload(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrPayloadParse)
	}

	var tree any
	strictErr := json.Unmarshal([]byte(SanitizePayload(raw)), &tree)
	if strictErr == nil {
		return tree, nil
	}

	tree = nil
	if err := json5.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPayloadParse, strictErr)
	}
	return tree, nil
}

func payloadFromTree(tree any) *PagePayload {
	var p PagePayload
	root, _ := tree.(map[string]any)
	props, _ := root["props"].(map[string]any)

	p.Props.Duration = secondsOf(props["duration"])
	if call, ok := props["call"].(map[string]any); ok {
		p.Props.Call = callFromTree(call)
	}
	return &p
}

func callFromTree(call map[string]any) *CallPayload {
	c := &CallPayload{
		StartedAt: timestampOf(call["started_at"]),
		Byline:    stringOf(call["byline"]),
		Title:     stringOf(call["title"]),
		VideoURL:  stringOf(call["video_url"]),
	}
	if host, ok := call["host"].(map[string]any); ok {
		c.Host = &CallHost{Email: stringOf(host["email"])}
	}
	return c
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}

// timestampOf passes strings through and renders numbers, taken as epoch
// milliseconds, as RFC 3339.
func timestampOf(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return ""
		}
		return time.UnixMilli(int64(t)).UTC().Format(time.RFC3339Nano)
	default:
		return ""
	}
}

func secondsOf(v any) Seconds {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Seconds(f)
}
