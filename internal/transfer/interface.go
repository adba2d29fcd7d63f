package transfer

import (
	"context"

	"github.com/sdr-tools/dispatchflow/internal/manifest"
	"github.com/sdr-tools/dispatchflow/internal/remote"
)

// TranscriptCheck reports whether a persisted transcript exists for the
// recording with the given file name. The transfer manager consults it
// before any remote deletion.
type TranscriptCheck func(name string) bool

// Manager decides the new-file set, downloads and verifies each file,
// commits the ledger, and guards remote cleanup.
type Manager interface {
	Sync(ctx context.Context, listing []remote.Recording) ([]manifest.Entry, []error)
	Cleanup(ctx context.Context, remotePath string) error
	Sweep(ctx context.Context, listing []remote.Recording) int
}
