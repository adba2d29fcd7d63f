package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/sdr-tools/dispatchflow/internal/transcriber"
	"github.com/sdr-tools/dispatchflow/internal/transfer"
)

// Run executes the pipeline once. Connection and listing failures are
// fatal; everything after that is isolated per file or per stage and
// the run still reaches DONE with the failures recorded on it.
func (e *implEngine) Run(ctx context.Context) *Run {
	run := &Run{StartedAt: time.Now(), Stamp: e.stamp, State: StateInit}

	e.logger.Info(ctx, "Starting run %s", run.Stamp)

	listing, err := e.client.List(ctx)
	if err != nil {
		e.logger.Error(ctx, "Listing failed, aborting run: %v", err)
		run.State = StateFailed
		run.Err = err
		return run
	}
	run.State = StateListed
	run.Listed = len(listing)

	downloaded, dlErrs := e.transfer.Sync(ctx, listing)
	for _, err := range dlErrs {
		failure := Failure{Stage: "download", Err: err}
		var dl *transfer.DownloadError
		if errors.As(err, &dl) {
			failure.File = dl.RemotePath
		}
		run.Failures = append(run.Failures, failure)
	}
	run.State = StateTransferred
	run.Downloaded = len(downloaded)

	var results []*transcriber.Result
	for _, entry := range downloaded {
		res, err := e.transcriber.Transcribe(ctx, entry.LocalPath)
		if err != nil {
			e.logger.Error(ctx, "Transcription failed for %s: %v", entry.LocalPath, err)
			run.Failures = append(run.Failures, Failure{File: entry.RemotePath, Stage: "transcribe", Err: err})
			continue
		}
		results = append(results, res)
	}
	run.State = StateTranscribed
	run.Transcribed = len(results)

	// Remote copies go away only after their transcripts are on disk.
	// The sweep also retries files whose deletion failed in an earlier
	// run. Refusals and remote failures are log-only: the local
	// artifacts already exist.
	if e.cfg.Cleanup {
		removed := e.transfer.Sweep(ctx, listing)
		e.logger.Info(ctx, "Remote cleanup removed %d of %d listed files", removed, len(listing))
	}

	if len(results) == 0 {
		e.logger.Info(ctx, "No new recordings, nothing to summarize")
	} else {
		report, err := e.summarizer.Summarize(ctx, results)
		if err != nil {
			e.logger.Error(ctx, "Summarization failed, transcripts retained: %v", err)
			run.Failures = append(run.Failures, Failure{Stage: "summarize", Err: err})
		} else if err := e.summarizer.Write(report, e.cfg.Paths.Summaries(), e.stamp); err != nil {
			e.logger.Error(ctx, "Failed to write summary: %v", err)
			run.Failures = append(run.Failures, Failure{Stage: "summarize", Err: err})
		}
	}
	run.State = StateSummarized

	run.State = StateDone
	e.logRunSummary(ctx, run)
	return run
}

func (e *implEngine) logRunSummary(ctx context.Context, run *Run) {
	e.logger.Info(ctx, "Run %s finished in %s: %s", run.Stamp, time.Since(run.StartedAt).Round(time.Second), run.State)
	e.logger.Info(ctx, "Listed %d, downloaded %d, transcribed %d", run.Listed, run.Downloaded, run.Transcribed)

	if len(run.Failures) == 0 {
		e.logger.Info(ctx, "No failures this run")
		return
	}

	e.logger.Warn(ctx, "%d FAILURES this run:", len(run.Failures))
	for _, f := range run.Failures {
		if f.File != "" {
			e.logger.Warn(ctx, "  [%s] %s: %v", f.Stage, f.File, f.Err)
		} else {
			e.logger.Warn(ctx, "  [%s] %v", f.Stage, f.Err)
		}
	}
}
