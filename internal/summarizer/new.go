package summarizer

import (
	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
)

type implSummarizer struct {
	apiKeys     []string
	currentKey  int
	model       string
	maxTokens   int
	temperature float64
	logger      logger.Logger
}

// New creates a Summarizer that rotates through the supplied Gemini API
// keys when one is rate limited.
func New(apiKeys []string, cfg config.GeminiConfig, log logger.Logger) Summarizer {
	temperature := 0.7
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &implSummarizer{
		apiKeys:     apiKeys,
		model:       cfg.Model,
		maxTokens:   cfg.MaxOutputTokens,
		temperature: temperature,
		logger:      log,
	}
}
