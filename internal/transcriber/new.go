package transcriber

import (
	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
	"github.com/sdr-tools/dispatchflow/pkg/executor"
)

type implTranscriber struct {
	cfg            config.WhisperConfig
	transcriptsDir string
	executor       executor.Executor
	logger         logger.Logger
}

// New creates a Transcriber that persists transcripts into
// transcriptsDir.
func New(cfg config.WhisperConfig, transcriptsDir string, exec executor.Executor, log logger.Logger) Transcriber {
	return &implTranscriber{
		cfg:            cfg,
		transcriptsDir: transcriptsDir,
		executor:       exec,
		logger:         log,
	}
}
