package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Remote  RemoteConfig  `yaml:"remote"`
	Paths   PathsConfig   `yaml:"paths"`
	Whisper WhisperConfig `yaml:"whisper"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Logging LoggingConfig `yaml:"logging"`
	Cleanup bool          `yaml:"cleanup"`
}

// RemoteConfig describes the capture host the pipeline pulls from.
// Authentication is key-based only.
type RemoteConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	KeyPath        string `yaml:"key_path"`
	Dir            string `yaml:"dir"`
	ConnectTimeout int    `yaml:"connect_timeout_seconds"`
}

// PathsConfig holds the local base directory. All artifact directories
// are fixed subpaths of it.
type PathsConfig struct {
	BaseDir string `yaml:"base_dir"`
}

func (p PathsConfig) Recordings() string  { return filepath.Join(p.BaseDir, "recordings") }
func (p PathsConfig) Transcripts() string { return filepath.Join(p.BaseDir, "transcripts") }
func (p PathsConfig) Summaries() string   { return filepath.Join(p.BaseDir, "daily_summaries") }
func (p PathsConfig) Logs() string        { return filepath.Join(p.BaseDir, "logs") }
func (p PathsConfig) Manifest() string    { return filepath.Join(p.BaseDir, "manifest.json") }

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Threads    int    `yaml:"threads"`
}

// GeminiConfig tunes the summarization request. Temperature is a
// pointer so an explicit 0 survives validation.
type GeminiConfig struct {
	Model           string   `yaml:"model"`
	MaxOutputTokens int      `yaml:"max_output_tokens"`
	Temperature     *float64 `yaml:"temperature"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and validates the YAML configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Remote.Host == "" {
		return fmt.Errorf("remote.host is required")
	}
	if c.Remote.Username == "" {
		return fmt.Errorf("remote.username is required")
	}
	if c.Remote.KeyPath == "" {
		return fmt.Errorf("remote.key_path is required")
	}
	if c.Remote.Dir == "" {
		return fmt.Errorf("remote.dir is required")
	}
	if c.Paths.BaseDir == "" {
		return fmt.Errorf("paths.base_dir is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}

	if c.Remote.Port == 0 {
		c.Remote.Port = 22
	}
	if c.Remote.ConnectTimeout == 0 {
		c.Remote.ConnectTimeout = 15
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "en"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.MaxOutputTokens == 0 {
		c.Gemini.MaxOutputTokens = 5000
	}
	if c.Gemini.Temperature == nil {
		temp := 0.7
		c.Gemini.Temperature = &temp
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
