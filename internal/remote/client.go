package remote

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// List returns a snapshot of the audio files in the remote recordings
// directory, sorted by name. Dotfiles and subdirectories are skipped.
func (c *implClient) List(ctx context.Context) ([]Recording, error) {
	entries, err := c.sftp.ReadDir(c.remoteDir)
	if err != nil {
		return nil, &DirectoryError{Path: c.remoteDir, Err: err}
	}

	var recordings []Recording
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !isAudioFile(e.Name()) {
			continue
		}
		recordings = append(recordings, Recording{
			Path:    path.Join(c.remoteDir, e.Name()),
			Name:    e.Name(),
			Size:    e.Size(),
			ModTime: e.ModTime(),
		})
	}

	sort.Slice(recordings, func(i, j int) bool { return recordings[i].Name < recordings[j].Name })

	c.logger.Debug(ctx, "Listed %d recordings in %s", len(recordings), c.remoteDir)
	return recordings, nil
}

// Download copies one remote recording to localPath and returns the
// number of bytes received. The caller verifies the count against the
// listed size before committing the file.
func (c *implClient) Download(ctx context.Context, rec Recording, localPath string) (int64, error) {
	src, err := c.sftp.Open(rec.Path)
	if err != nil {
		return 0, fmt.Errorf("open remote %s: %w", rec.Path, err)
	}
	defer src.Close()

	dst, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", localPath, err)
	}

	n, err := src.WriteTo(dst)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("download %s: %w", rec.Path, err)
	}

	return n, nil
}

// Remove deletes one recording on the capture host.
func (c *implClient) Remove(ctx context.Context, remotePath string) error {
	return c.sftp.Remove(remotePath)
}

func (c *implClient) Close() error {
	if err := c.sftp.Close(); err != nil {
		c.ssh.Close()
		return err
	}
	return c.ssh.Close()
}

func isAudioFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav", ".mp3":
		return true
	}
	return false
}
