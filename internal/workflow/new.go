package workflow

import (
	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
	"github.com/sdr-tools/dispatchflow/internal/remote"
	"github.com/sdr-tools/dispatchflow/internal/summarizer"
	"github.com/sdr-tools/dispatchflow/internal/transcriber"
	"github.com/sdr-tools/dispatchflow/internal/transfer"
)

type implEngine struct {
	cfg         *config.Config
	client      remote.Client
	transfer    transfer.Manager
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	stamp       string
	logger      logger.Logger
}

// New creates an Engine for a single run identified by stamp.
func New(cfg *config.Config, client remote.Client, mgr transfer.Manager, tr transcriber.Transcriber, sum summarizer.Summarizer, stamp string, log logger.Logger) Engine {
	return &implEngine{
		cfg:         cfg,
		client:      client,
		transfer:    mgr,
		transcriber: tr,
		summarizer:  sum,
		stamp:       stamp,
		logger:      log,
	}
}
