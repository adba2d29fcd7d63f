package transfer

import "fmt"

// DownloadError is a per-file transfer failure. It is recorded on the
// run and never aborts the remaining files.
type DownloadError struct {
	RemotePath string
	Err        error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.RemotePath, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
