package entity

// Placeholder values used whenever a field could not be recovered from the page.
const (
	DefaultCallDate = "1970-01-01"
	UnknownValue    = "Unknown"
	NoTitle         = "No Title"
)

// CallRecord is the metadata result returned by /scrape-metadata.
// JSON keys intentionally keep the PascalCase names consumers already depend on.
type CallRecord struct {
	CallDate        string `json:"CallDate" yaml:"CallDate"`
	SalespersonName string `json:"SalespersonName" yaml:"SalespersonName"`
	ProspectName    string `json:"ProspectName" yaml:"ProspectName"`
	CallDuration    string `json:"CallDuration" yaml:"CallDuration"`
	TranscriptLink  string `json:"TranscriptLink" yaml:"TranscriptLink"`
	Title           string `json:"Title" yaml:"Title"`
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
}

// FailedCallRecord is the record returned when an attempt could not reach the page data at all.
func FailedCallRecord(videoURL string, err error) CallRecord {
	rec := CallRecord{
		CallDate:        UnknownValue,
		SalespersonName: UnknownValue,
		ProspectName:    UnknownValue,
		CallDuration:    UnknownValue,
		TranscriptLink:  videoURL,
		Title:           NoTitle,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
