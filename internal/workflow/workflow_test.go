package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
	"github.com/sdr-tools/dispatchflow/internal/manifest"
	"github.com/sdr-tools/dispatchflow/internal/remote"
	"github.com/sdr-tools/dispatchflow/internal/summarizer"
	"github.com/sdr-tools/dispatchflow/internal/transcriber"
)

type fakeLister struct {
	listing []remote.Recording
	err     error
}

func (f *fakeLister) List(ctx context.Context) ([]remote.Recording, error) {
	return f.listing, f.err
}

func (f *fakeLister) Download(ctx context.Context, rec remote.Recording, localPath string) (int64, error) {
	return 0, nil
}

func (f *fakeLister) Remove(ctx context.Context, remotePath string) error { return nil }
func (f *fakeLister) Close() error                                        { return nil }

type fakeTransfer struct {
	downloaded []manifest.Entry
	failures   []error
	cleanups   []string
	sweeps     [][]remote.Recording
}

func (f *fakeTransfer) Sync(ctx context.Context, listing []remote.Recording) ([]manifest.Entry, []error) {
	return f.downloaded, f.failures
}

func (f *fakeTransfer) Cleanup(ctx context.Context, remotePath string) error {
	f.cleanups = append(f.cleanups, remotePath)
	return nil
}

func (f *fakeTransfer) Sweep(ctx context.Context, listing []remote.Recording) int {
	f.sweeps = append(f.sweeps, listing)
	return len(listing)
}

type fakeTranscriber struct {
	failFor map[string]bool
	calls   int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (*transcriber.Result, error) {
	f.calls++
	if f.failFor[audioPath] {
		return nil, &transcriber.TranscriptionError{Source: audioPath, Err: fmt.Errorf("decode failed")}
	}
	return &transcriber.Result{Source: audioPath, Segments: []transcriber.Segment{}}, nil
}

func (f *fakeTranscriber) HasTranscript(name string) bool { return false }

type fakeSummarizer struct {
	calls   int
	batches [][]*transcriber.Result
	err     error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, results []*transcriber.Result) (*summarizer.Report, error) {
	f.calls++
	f.batches = append(f.batches, results)
	if f.err != nil {
		return nil, f.err
	}
	return &summarizer.Report{Parsed: true}, nil
}

func (f *fakeSummarizer) Write(report *summarizer.Report, destDir, stamp string) error {
	return nil
}

func testConfig(t *testing.T, cleanup bool) *config.Config {
	t.Helper()
	return &config.Config{
		Paths:   config.PathsConfig{BaseDir: t.TempDir()},
		Cleanup: cleanup,
	}
}

func TestRunFatalListingFailure(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{err: &remote.ConnectionError{Host: "10.0.0.5", Err: fmt.Errorf("timeout")}}
	sum := &fakeSummarizer{}

	engine := New(testConfig(t, false), client, &fakeTransfer{}, &fakeTranscriber{}, sum, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateFailed {
		t.Errorf("State = %v, want FAILED", run.State)
	}
	if run.Err == nil {
		t.Error("fatal error not recorded on run")
	}
	if sum.calls != 0 {
		t.Error("summarizer called on failed run")
	}
}

func TestRunEmptyNewFileSet(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{{Path: "/r/a.wav", Name: "a.wav"}}}
	sum := &fakeSummarizer{}
	tr := &fakeTranscriber{}

	engine := New(testConfig(t, false), client, &fakeTransfer{}, tr, sum, "t1", logger.New("error"))
	run := engine.Run(ctx)

	// Nothing new: the run still walks every stage and succeeds, but
	// no transcription or API call happens.
	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}
	if len(run.Failures) != 0 {
		t.Errorf("Failures = %v", run.Failures)
	}
	if tr.calls != 0 {
		t.Error("transcriber called with no new files")
	}
	if sum.calls != 0 {
		t.Error("summarizer called with no new transcripts")
	}
}

func TestRunPartialFailureIsolation(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{
		{Path: "/r/a.wav", Name: "a.wav"},
		{Path: "/r/b.wav", Name: "b.wav"},
		{Path: "/r/c.wav", Name: "c.wav"},
	}}
	mgr := &fakeTransfer{downloaded: []manifest.Entry{
		{RemotePath: "/r/a.wav", LocalPath: "/l/a.wav"},
		{RemotePath: "/r/b.wav", LocalPath: "/l/b.wav"},
		{RemotePath: "/r/c.wav", LocalPath: "/l/c.wav"},
	}}
	tr := &fakeTranscriber{failFor: map[string]bool{"/l/b.wav": true}}
	sum := &fakeSummarizer{}

	engine := New(testConfig(t, false), client, mgr, tr, sum, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}
	if len(run.Failures) != 1 {
		t.Fatalf("Failures = %v, want 1", run.Failures)
	}
	if run.Failures[0].Stage != "transcribe" || run.Failures[0].File != "/r/b.wav" {
		t.Errorf("failure = %+v", run.Failures[0])
	}

	// The other two files still reach summarization.
	if sum.calls != 1 || len(sum.batches[0]) != 2 {
		t.Errorf("summarizer got %d batches, first of %d results", sum.calls, len(sum.batches[0]))
	}
}

func TestRunRecordsDownloadFailures(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{{Path: "/r/c.wav", Name: "c.wav"}}}
	mgr := &fakeTransfer{failures: []error{
		&transferDownloadError{path: "/r/c.wav"},
	}}

	engine := New(testConfig(t, false), client, mgr, &fakeTranscriber{}, &fakeSummarizer{}, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}
	if len(run.Failures) != 1 || run.Failures[0].Stage != "download" {
		t.Errorf("Failures = %v", run.Failures)
	}
}

// transferDownloadError stands in for a generic download failure that is
// not a *transfer.DownloadError, to cover the stage-only failure path.
type transferDownloadError struct{ path string }

func (e *transferDownloadError) Error() string { return "download " + e.path + ": truncated" }

func TestRunSweepsFullListingWhenCleanupEnabled(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{
		{Path: "/r/a.wav", Name: "a.wav"},
		{Path: "/r/b.wav", Name: "b.wav"},
	}}
	mgr := &fakeTransfer{downloaded: []manifest.Entry{
		{RemotePath: "/r/a.wav", LocalPath: "/l/a.wav"},
	}}

	engine := New(testConfig(t, true), client, mgr, &fakeTranscriber{}, &fakeSummarizer{}, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}

	// The sweep sees the whole listing, not just this run's downloads,
	// so an earlier run's leftovers get retried.
	if len(mgr.sweeps) != 1 || len(mgr.sweeps[0]) != 2 {
		t.Fatalf("sweeps = %v, want one sweep over both listed files", mgr.sweeps)
	}
}

func TestRunNoSweepWhenCleanupDisabled(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{{Path: "/r/a.wav", Name: "a.wav"}}}
	mgr := &fakeTransfer{downloaded: []manifest.Entry{
		{RemotePath: "/r/a.wav", LocalPath: "/l/a.wav"},
	}}

	engine := New(testConfig(t, false), client, mgr, &fakeTranscriber{}, &fakeSummarizer{}, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}
	if len(mgr.sweeps) != 0 {
		t.Errorf("sweeps = %v, want none", mgr.sweeps)
	}
}

func TestRunSummarizerFailureNotFatal(t *testing.T) {
	ctx := context.Background()
	client := &fakeLister{listing: []remote.Recording{{Path: "/r/a.wav", Name: "a.wav"}}}
	mgr := &fakeTransfer{downloaded: []manifest.Entry{
		{RemotePath: "/r/a.wav", LocalPath: "/l/a.wav"},
	}}
	sum := &fakeSummarizer{err: &summarizer.ServiceError{Err: fmt.Errorf("auth failed")}}

	engine := New(testConfig(t, false), client, mgr, &fakeTranscriber{}, sum, "t1", logger.New("error"))
	run := engine.Run(ctx)

	if run.State != StateDone {
		t.Errorf("State = %v, want DONE", run.State)
	}
	if len(run.Failures) != 1 || run.Failures[0].Stage != "summarize" {
		t.Errorf("Failures = %v", run.Failures)
	}
	if !strings.Contains(run.Failures[0].Err.Error(), "auth failed") {
		t.Errorf("failure cause lost: %v", run.Failures[0].Err)
	}
}
