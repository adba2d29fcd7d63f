package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Incident is one logical event extracted from the combined transcript
// batch, bounded by a time range and the units involved.
type Incident struct {
	TimeRange  string   `json:"time_range"`
	Units      []string `json:"units"`
	Nature     string   `json:"nature"`
	Details    string   `json:"details"`
	Resolution string   `json:"resolution,omitempty"`
}

// Report is the structured summary of one run's transcript batch. When
// the model response cannot be parsed, Parsed is false, Incidents is
// empty and Raw preserves the unparsed output rather than discarding it.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Model       string     `json:"model"`
	Sources     []string   `json:"sources"`
	Incidents   []Incident `json:"incidents"`
	Parsed      bool       `json:"parsed"`
	Raw         string     `json:"raw,omitempty"`
}

// parseIncidents extracts the JSON incident array from the model
// response, tolerating markdown code fences around it.
func parseIncidents(text string) ([]Incident, error) {
	payload := strings.TrimSpace(text)
	if i := strings.Index(payload, "```"); i >= 0 {
		payload = payload[i+3:]
		payload = strings.TrimPrefix(payload, "json")
		if j := strings.Index(payload, "```"); j >= 0 {
			payload = payload[:j]
		}
	}

	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var incidents []Incident
	if err := json.Unmarshal([]byte(payload[start:end+1]), &incidents); err != nil {
		return nil, fmt.Errorf("parse incidents: %w", err)
	}

	return incidents, nil
}

// FormatText renders the human-readable summary form.
func (r *Report) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dispatch Summary %s\n", r.GeneratedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Model: %s\n", r.Model)
	fmt.Fprintf(&b, "Recordings: %s\n\n", strings.Join(r.Sources, ", "))

	if !r.Parsed {
		b.WriteString("Model output could not be parsed into incidents. Raw output follows.\n\n")
		b.WriteString(r.Raw)
		b.WriteString("\n")
		return b.String()
	}

	if len(r.Incidents) == 0 {
		b.WriteString("No incidents identified.\n")
		return b.String()
	}

	for i, inc := range r.Incidents {
		fmt.Fprintf(&b, "Incident %d\n", i+1)
		fmt.Fprintf(&b, "  Time range: %s\n", inc.TimeRange)
		fmt.Fprintf(&b, "  Units: %s\n", strings.Join(inc.Units, ", "))
		fmt.Fprintf(&b, "  Nature: %s\n", inc.Nature)
		fmt.Fprintf(&b, "  Details: %s\n", inc.Details)
		if inc.Resolution != "" {
			fmt.Fprintf(&b, "  Resolution: %s\n", inc.Resolution)
		}
		b.WriteString("\n")
	}

	return b.String()
}
