package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pacscope/pacscope/pkg/snapshot"
)

// timestampLayout names snapshot files so lexical order is time order.
const timestampLayout = "20060102-150405"

// FileStore keeps snapshots as timestamped JSON files in one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file a snapshot would be saved under.
func (f *FileStore) Path(s *snapshot.Snapshot) string {
	name := fmt.Sprintf("pacscope-%s-%s.json", s.Hostname, s.Timestamp.Format(timestampLayout))
	return filepath.Join(f.dir, name)
}

// Save writes the snapshot to its timestamped file.
func (f *FileStore) Save(_ context.Context, s *snapshot.Snapshot) error {
	return snapshot.WriteFile(s, f.Path(s))
}

// Latest loads the newest snapshot file, or ErrNoSnapshot for an empty
// directory.
func (f *FileStore) Latest(_ context.Context) (*snapshot.Snapshot, error) {
	files, err := f.files()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSnapshot
	}
	return snapshot.ReadFile(files[len(files)-1])
}

// Get scans the snapshot files for the given envelope ID. The filename
// carries only host and timestamp, so each candidate has to be read.
func (f *FileStore) Get(_ context.Context, id string) (*snapshot.Snapshot, error) {
	files, err := f.files()
	if err != nil {
		return nil, err
	}

	for i := len(files) - 1; i >= 0; i-- {
		s, err := snapshot.ReadFile(files[i])
		if err != nil {
			continue
		}
		if s.ID == id {
			return s, nil
		}
	}
	return nil, ErrNoSnapshot
}

// List reads every snapshot file and returns summaries, newest first.
func (f *FileStore) List(_ context.Context) ([]Meta, error) {
	files, err := f.files()
	if err != nil {
		return nil, err
	}

	metas := make([]Meta, 0, len(files))
	for i := len(files) - 1; i >= 0; i-- {
		s, err := snapshot.ReadFile(files[i])
		if err != nil {
			continue // skip unreadable entries rather than failing the listing
		}
		metas = append(metas, metaOf(s))
	}
	return metas, nil
}

// Close is a no-op for the file backend.
func (f *FileStore) Close(context.Context) error { return nil }

// files returns the snapshot files sorted by name, which sorts by
// timestamp given the naming scheme.
func (f *FileStore) files() ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "pacscope-") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(f.dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
