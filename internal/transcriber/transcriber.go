package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// TranscriptionError carries the source recording alongside the
// underlying cause. Per-file: the engine records it and moves on to the
// next recording.
type TranscriptionError struct {
	Source string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcribe %s: %v", e.Source, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Transcribe runs whisper.cpp on the recording and persists the
// transcript. An already persisted transcript is reloaded instead of
// re-invoking the model, making repeated runs idempotent at this stage.
// There is no internal retry: the same input and model fail the same
// way twice.
func (t *implTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	name := filepath.Base(audioPath)

	if t.HasTranscript(name) {
		t.logger.Info(ctx, "Transcript exists, skipping transcription: %s", name)
		res, err := t.load(name)
		if err != nil {
			return nil, &TranscriptionError{Source: audioPath, Err: err}
		}
		return res, nil
	}

	t.logger.Info(ctx, "Starting transcription with %d threads: %s", t.cfg.Threads, audioPath)

	outputPrefix := filepath.Join(t.transcriptsDir, ".whisper-"+stem(name))

	// -m: model path
	// -f: input audio file
	// -oj: JSON output with per-segment millisecond offsets
	// -l: force language (prevents hallucination)
	// -t: number of threads
	// --prompt: domain keywords to improve accuracy on radio jargon
	args := []string{
		"-m", t.cfg.ModelPath,
		"-f", audioPath,
		"-oj",
		"-l", t.cfg.Language,
		"-t", strconv.Itoa(t.cfg.Threads),
		"--output-file", outputPrefix,
	}
	if t.cfg.Prompt != "" {
		args = append(args, "--prompt", t.cfg.Prompt)
	}

	if _, err := t.executor.Execute(ctx, t.cfg.BinaryPath, args...); err != nil {
		return nil, &TranscriptionError{Source: audioPath, Err: fmt.Errorf("whisper: %w", err)}
	}

	rawPath := outputPrefix + ".json"
	defer os.Remove(rawPath)

	segments, err := parseWhisperOutput(rawPath)
	if err != nil {
		return nil, &TranscriptionError{Source: audioPath, Err: err}
	}

	res := &Result{Source: name, Segments: normalize(segments)}
	if err := t.persist(res); err != nil {
		return nil, &TranscriptionError{Source: audioPath, Err: err}
	}

	t.logger.Info(ctx, "Transcription complete: %s (%d segments)", name, len(res.Segments))
	return res, nil
}

// HasTranscript reports whether the structured transcript for the
// recording file name is already persisted.
func (t *implTranscriber) HasTranscript(name string) bool {
	_, err := os.Stat(t.jsonPath(name))
	return err == nil
}

func (t *implTranscriber) jsonPath(name string) string {
	return filepath.Join(t.transcriptsDir, stem(name)+".json")
}

func (t *implTranscriber) textPath(name string) string {
	return filepath.Join(t.transcriptsDir, stem(name)+".txt")
}

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// whisperOutput mirrors the part of whisper.cpp's -oj output the
// pipeline consumes. Offsets are milliseconds.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperOutput(path string) ([]Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]Segment, 0, len(out.Transcription))
	for _, seg := range out.Transcription {
		segments = append(segments, Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  seg.Text,
		})
	}
	return segments, nil
}

// persist writes the structured and textual transcript forms, staging
// each through a temp file and rename so an interrupted run never
// leaves a half-written transcript behind.
func (t *implTranscriber) persist(res *Result) error {
	data, err := json.MarshalIndent(res.Segments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	if err := writeAtomic(t.jsonPath(res.Source), data); err != nil {
		return err
	}
	return writeAtomic(t.textPath(res.Source), []byte(res.FormatText()))
}

func (t *implTranscriber) load(name string) (*Result, error) {
	data, err := os.ReadFile(t.jsonPath(name))
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var segments []Segment
	if err := json.Unmarshal(data, &segments); err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", t.jsonPath(name), err)
	}

	return &Result{Source: name, Segments: normalize(segments)}, nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
