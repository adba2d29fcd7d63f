package transcriber

import (
	"fmt"
	"sort"
	"strings"
)

// Segment is one timestamped utterance. Offsets are seconds from the
// start of the recording.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the transcript of one recording. Segments is empty, never
// nil, when the audio contains no detected speech.
type Result struct {
	Source   string    `json:"source"`
	Segments []Segment `json:"segments"`
}

// normalize sorts segments by start offset and clamps any end offset
// that precedes its start. Whisper occasionally emits segments a few
// milliseconds out of order around silence boundaries.
func normalize(segments []Segment) []Segment {
	if segments == nil {
		segments = []Segment{}
	}
	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })
	for i := range segments {
		if segments[i].End < segments[i].Start {
			segments[i].End = segments[i].Start
		}
		segments[i].Text = strings.TrimSpace(segments[i].Text)
	}
	return segments
}

// formatOffset renders an offset as MM:SS.mmm.
func formatOffset(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	m := int(seconds) / 60
	return fmt.Sprintf("%02d:%06.3f", m, seconds-float64(m*60))
}

// FormatText renders the line-per-segment textual transcript form.
func (r *Result) FormatText() string {
	var b strings.Builder
	for _, s := range r.Segments {
		fmt.Fprintf(&b, "[%s --> %s] %s\n", formatOffset(s.Start), formatOffset(s.End), s.Text)
	}
	return b.String()
}
