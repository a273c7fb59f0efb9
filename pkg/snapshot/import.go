package snapshot

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pacscope/pacscope/pkg/errors"
)

// Read decodes a JSON snapshot from r.
func Read(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if s.Packages == nil {
		s.Packages = map[string]Package{}
	}
	return &s, nil
}

// ReadFile reads a snapshot from the JSON file at path.
func ReadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
