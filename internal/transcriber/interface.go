package transcriber

import "context"

// Transcriber turns one downloaded recording into a timestamped
// transcript, persisting both the textual and structured forms.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
	HasTranscript(name string) bool
}
