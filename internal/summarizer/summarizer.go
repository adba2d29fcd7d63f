package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/sdr-tools/dispatchflow/internal/transcriber"
)

const incidentPrompt = `Analyze this batch of police dispatch transcripts. Each recording is
delimited by a "===== <file> =====" marker and every line carries a
[MM:SS.mmm --> MM:SS.mmm] timestamp.

Segment the combined traffic into discrete incidents, using temporal
gaps and recurring unit identifiers as boundaries. Report EVERY
incident.

Department terminology:
- RP = Reporting Party
- Victor units = patrol units

Respond with ONLY a JSON array, one object per incident:
[{"time_range": "...", "units": ["..."], "nature": "...", "details": "...", "resolution": "..."}]

Include all communications and preserve all technical details.`

// maxTranscriptChars bounds the request body. Very long batches are
// truncated rather than rejected.
const maxTranscriptChars = 100000

// ServiceError is a transport or authentication failure talking to the
// summarization service. It aborts the summarization stage only;
// transcripts and downloads already persisted remain valid artifacts.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("summary service: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Summarize sends the full batch of transcripts in a single request and
// parses the structured incident report from the response. An
// unparsable response degrades to a raw, unstructured report instead of
// failing the stage.
func (s *implSummarizer) Summarize(ctx context.Context, results []*transcriber.Result) (*Report, error) {
	batch, sources := buildBatch(results)
	if len(batch) > maxTranscriptChars {
		s.logger.Warn(ctx, "Truncating transcript batch from %d to %d characters", len(batch), maxTranscriptChars)
		batch = truncateBatch(batch)
	}

	s.logger.Info(ctx, "Summarizing %d transcripts with %s", len(results), s.model)

	text, err := s.generate(ctx, batch)
	if err != nil {
		return nil, &ServiceError{Err: err}
	}

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		Model:       s.model,
		Sources:     sources,
	}

	incidents, err := parseIncidents(text)
	if err != nil {
		s.logger.Warn(ctx, "Summary response not parsable, storing raw output: %v", err)
		report.Incidents = []Incident{}
		report.Raw = strings.TrimSpace(text)
		return report, nil
	}

	report.Incidents = incidents
	report.Parsed = true
	s.logger.Info(ctx, "Summary parsed: %d incidents", len(incidents))
	return report, nil
}

// truncateBatch caps the batch at maxTranscriptChars bytes, backing up
// to the previous rune boundary so the prompt never carries a half rune.
func truncateBatch(batch string) string {
	if len(batch) <= maxTranscriptChars {
		return batch
	}
	cut := maxTranscriptChars
	for cut > 0 && !utf8.RuneStart(batch[cut]) {
		cut--
	}
	return batch[:cut]
}

// buildBatch concatenates transcripts with file boundary markers so the
// model can correlate related traffic across recordings.
func buildBatch(results []*transcriber.Result) (string, []string) {
	var b strings.Builder
	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.Source)
		fmt.Fprintf(&b, "===== %s =====\n", r.Source)
		b.WriteString(r.FormatText())
		b.WriteString("\n")
	}
	return b.String(), sources
}

// generate calls Gemini, rotating API keys on quota errors.
func (s *implSummarizer) generate(ctx context.Context, batch string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", fmt.Errorf("no API keys configured")
	}

	prompt := incidentPrompt + "\n\nTranscripts:\n---\n" + batch + "\n---"

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(s.maxTokens),
		Temperature:     genai.Ptr(float32(s.temperature)),
	}

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.apiKeys[s.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), genCfg)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			var text string
			for _, part := range result.Candidates[0].Content.Parts {
				if part.Text != "" {
					text += part.Text
				}
			}
			return text, nil
		}

		return "", fmt.Errorf("empty response from Gemini")
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

// Write persists the report in both human and structured forms under
// destDir, named by the run timestamp.
func (s *implSummarizer) Write(report *Report, destDir, stamp string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create summaries dir: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	jsonPath := filepath.Join(destDir, stamp+".json")
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", jsonPath, err)
	}

	txtPath := filepath.Join(destDir, stamp+".txt")
	if err := os.WriteFile(txtPath, []byte(report.FormatText()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", txtPath, err)
	}

	return nil
}
