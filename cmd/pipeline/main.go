package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
	"github.com/sdr-tools/dispatchflow/internal/manifest"
	"github.com/sdr-tools/dispatchflow/internal/remote"
	"github.com/sdr-tools/dispatchflow/internal/summarizer"
	"github.com/sdr-tools/dispatchflow/internal/transcriber"
	"github.com/sdr-tools/dispatchflow/internal/transfer"
	"github.com/sdr-tools/dispatchflow/internal/workflow"
	"github.com/sdr-tools/dispatchflow/pkg/executor"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx := context.Background()

	// API keys live in the environment, optionally seeded from .env
	_ = godotenv.Load()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	if err := ensureDirectories(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		return 1
	}

	stamp := time.Now().Format("20060102_150405")

	logPath := filepath.Join(cfg.Paths.Logs(), stamp+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open run log %s: %v\n", logPath, err)
		return 1
	}
	defer logFile.Close()

	log := logger.NewWithWriter(cfg.Logging.Level, logFile)
	log.Info(ctx, "========================================")
	log.Info(ctx, "SDR Dispatch Transcription Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Run: %s", stamp)
	log.Info(ctx, "Remote: %s@%s:%s", cfg.Remote.Username, cfg.Remote.Host, cfg.Remote.Dir)
	log.Info(ctx, "Base dir: %s", cfg.Paths.BaseDir)
	log.Info(ctx, "Whisper model: %s", cfg.Whisper.ModelPath)
	log.Info(ctx, "Summary model: %s", cfg.Gemini.Model)
	log.Info(ctx, "Remote cleanup: %v", cfg.Cleanup)

	apiKeys := splitKeys(os.Getenv("GEMINI_API_KEY"))
	if len(apiKeys) == 0 {
		log.Warn(ctx, "GEMINI_API_KEY not set, summarization will fail")
	}

	store, err := manifest.Load(cfg.Paths.Manifest())
	if err != nil {
		log.Error(ctx, "Failed to load manifest: %v", err)
		return 1
	}
	log.Info(ctx, "Manifest: %d recordings already downloaded", store.Len())

	client, err := remote.Dial(cfg.Remote, log)
	if err != nil {
		log.Error(ctx, "Connection failed: %v", err)
		return 1
	}
	defer client.Close()

	exec := executor.New()
	trans := transcriber.New(cfg.Whisper, cfg.Paths.Transcripts(), exec, log)
	mgr := transfer.New(client, store, cfg.Paths.Recordings(), trans.HasTranscript, log)
	sum := summarizer.New(apiKeys, cfg.Gemini, log)

	engine := workflow.New(cfg, client, mgr, trans, sum, stamp, log)
	result := engine.Run(ctx)

	if result.State == workflow.StateFailed {
		return 1
	}
	return 0
}

// ensureDirectories creates the artifact tree under the base directory
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Recordings(),
		cfg.Paths.Transcripts(),
		cfg.Paths.Summaries(),
		cfg.Paths.Logs(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}

// splitKeys parses a comma-separated key list from the environment.
func splitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
