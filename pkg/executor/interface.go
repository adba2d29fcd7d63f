package executor

import "context"

// Executor runs external commands. The transcription adapter uses it to
// invoke the whisper.cpp binary.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
}
