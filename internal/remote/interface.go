package remote

import (
	"context"
	"time"
)

// Recording is an immutable snapshot of one audio file on the capture
// host, taken at listing time.
type Recording struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Client is a connected SFTP session to the capture host. One client is
// dialed per run and reused for listing, every download, and cleanup.
type Client interface {
	List(ctx context.Context) ([]Recording, error)
	Download(ctx context.Context, rec Recording, localPath string) (int64, error)
	Remove(ctx context.Context, remotePath string) error
	Close() error
}
