package transfer

import (
	"github.com/sdr-tools/dispatchflow/internal/logger"
	"github.com/sdr-tools/dispatchflow/internal/manifest"
	"github.com/sdr-tools/dispatchflow/internal/remote"
)

type implManager struct {
	client        remote.Client
	store         *manifest.Store
	recordingsDir string
	hasTranscript TranscriptCheck
	logger        logger.Logger
}

// New creates a Manager that downloads into recordingsDir and commits
// verified files to the store.
func New(client remote.Client, store *manifest.Store, recordingsDir string, hasTranscript TranscriptCheck, log logger.Logger) Manager {
	return &implManager{
		client:        client,
		store:         store,
		recordingsDir: recordingsDir,
		hasTranscript: hasTranscript,
		logger:        log,
	}
}
