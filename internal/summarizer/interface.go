package summarizer

import (
	"context"

	"github.com/sdr-tools/dispatchflow/internal/transcriber"
)

// Summarizer turns one run's batch of transcripts into a structured
// incident report and persists it.
type Summarizer interface {
	Summarize(ctx context.Context, results []*transcriber.Result) (*Report, error)
	Write(report *Report, destDir, stamp string) error
}
