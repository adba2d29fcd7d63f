package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sdr-tools/dispatchflow/internal/remote"
)

// Entry records one confirmed download. Presence of an entry implies
// the local file existed with the recorded size when it was committed.
// Entries are never mutated.
type Entry struct {
	RemotePath   string    `json:"remote_path"`
	LocalPath    string    `json:"local_path"`
	Size         int64     `json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Store is the durable ledger of remote recordings already downloaded.
// It is loaded once at run start and rewritten atomically on every
// commit. Single writer: concurrent runs against the same base
// directory are not supported.
type Store struct {
	path    string
	entries map[string]Entry
}

// Load reads the manifest at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for _, e := range entries {
		s.entries[e.RemotePath] = e
	}

	return s, nil
}

// Has reports whether the remote path was already downloaded.
func (s *Store) Has(remotePath string) bool {
	_, ok := s.entries[remotePath]
	return ok
}

// Get returns the entry for a remote path.
func (s *Store) Get(remotePath string) (Entry, bool) {
	e, ok := s.entries[remotePath]
	return e, ok
}

// Len returns the number of committed entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Commit records a verified download and rewrites the ledger. The
// rewrite goes through a temp file and rename so an interrupted run
// never leaves a half-written manifest.
func (s *Store) Commit(e Entry) error {
	s.entries[e.RemotePath] = e
	return s.flush()
}

func (s *Store) flush() error {
	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RemotePath < entries[j].RemotePath })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit manifest: %w", err)
	}

	return nil
}

// NewRecordings returns the listing entries not yet in the ledger.
// Matching is by remote path only: size or mtime changes on an already
// downloaded file never trigger a re-download.
func (s *Store) NewRecordings(listing []remote.Recording) []remote.Recording {
	var fresh []remote.Recording
	for _, rec := range listing {
		if !s.Has(rec.Path) {
			fresh = append(fresh, rec)
		}
	}
	return fresh
}
