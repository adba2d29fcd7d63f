package workflow

import (
	"context"
	"time"
)

// State is the position of a run in its linear lifecycle. There are no
// backward transitions; FAILED is reachable only before any file work
// starts.
type State string

const (
	StateInit        State = "INIT"
	StateListed      State = "LISTED"
	StateTransferred State = "TRANSFERRED"
	StateTranscribed State = "TRANSCRIBED"
	StateSummarized  State = "SUMMARIZED"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Failure records one non-fatal error with the file and stage it hit.
type Failure struct {
	File  string
	Stage string
	Err   error
}

// Run is the in-memory record of one engine execution. It exists only
// for the duration of the run and in the log.
type Run struct {
	StartedAt   time.Time
	Stamp       string
	State       State
	Listed      int
	Downloaded  int
	Transcribed int
	Failures    []Failure
	Err         error // fatal connection or listing error, set only with StateFailed
}

// Engine drives one end-to-end pipeline run.
type Engine interface {
	Run(ctx context.Context) *Run
}
