package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sdr-tools/dispatchflow/internal/manifest"
	"github.com/sdr-tools/dispatchflow/internal/remote"
)

// Sync downloads every listed recording not yet in the ledger. Each
// file is staged, verified against the listed size, renamed into place
// and committed before the next file starts. A failed file is reported
// in the returned error slice and skipped; it never aborts the rest.
func (m *implManager) Sync(ctx context.Context, listing []remote.Recording) ([]manifest.Entry, []error) {
	fresh := m.store.NewRecordings(listing)
	m.logger.Info(ctx, "%d remote recordings, %d new", len(listing), len(fresh))

	var downloaded []manifest.Entry
	var failures []error

	for _, rec := range fresh {
		entry, err := m.download(ctx, rec)
		if err != nil {
			m.logger.Error(ctx, "Download failed for %s: %v", rec.Path, err)
			failures = append(failures, &DownloadError{RemotePath: rec.Path, Err: err})
			continue
		}
		downloaded = append(downloaded, entry)
	}

	return downloaded, failures
}

func (m *implManager) download(ctx context.Context, rec remote.Recording) (manifest.Entry, error) {
	staging := filepath.Join(m.recordingsDir, ".partial-"+rec.Name)
	finalPath := filepath.Join(m.recordingsDir, rec.Name)

	n, err := m.client.Download(ctx, rec, staging)
	if err != nil {
		os.Remove(staging)
		return manifest.Entry{}, err
	}

	if n != rec.Size {
		os.Remove(staging)
		return manifest.Entry{}, fmt.Errorf("size mismatch: received %d bytes, remote reports %d", n, rec.Size)
	}

	if err := os.Rename(staging, finalPath); err != nil {
		os.Remove(staging)
		return manifest.Entry{}, fmt.Errorf("commit %s: %w", finalPath, err)
	}

	entry := manifest.Entry{
		RemotePath:   rec.Path,
		LocalPath:    finalPath,
		Size:         rec.Size,
		DownloadedAt: time.Now().UTC(),
	}
	if err := m.store.Commit(entry); err != nil {
		return manifest.Entry{}, err
	}

	m.logger.Info(ctx, "Downloaded %s (%d bytes)", rec.Name, n)
	return entry, nil
}

// Cleanup deletes the remote copy of an already processed recording.
// It refuses unless the ledger holds a verified entry for the path and
// a transcript has been persisted, so a remote file can never disappear
// before its local artifacts exist.
func (m *implManager) Cleanup(ctx context.Context, remotePath string) error {
	entry, ok := m.store.Get(remotePath)
	if !ok {
		return fmt.Errorf("refusing cleanup of %s: no manifest entry", remotePath)
	}
	if m.hasTranscript == nil || !m.hasTranscript(filepath.Base(entry.LocalPath)) {
		return fmt.Errorf("refusing cleanup of %s: no persisted transcript", remotePath)
	}

	if err := m.client.Remove(ctx, remotePath); err != nil {
		return fmt.Errorf("remove remote %s: %w", remotePath, err)
	}

	m.logger.Info(ctx, "Removed remote copy: %s", remotePath)
	return nil
}

// Sweep runs Cleanup over every listed file the ledger already holds,
// so a remote copy whose deletion failed in an earlier run, or that was
// processed before cleanup was enabled, is deleted on the next run.
// Guard refusals are logged and skipped. Returns the number removed.
func (m *implManager) Sweep(ctx context.Context, listing []remote.Recording) int {
	removed := 0
	for _, rec := range listing {
		if !m.store.Has(rec.Path) {
			continue
		}
		if err := m.Cleanup(ctx, rec.Path); err != nil {
			m.logger.Warn(ctx, "Remote cleanup skipped for %s: %v", rec.Path, err)
			continue
		}
		removed++
	}
	return removed
}
