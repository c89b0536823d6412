package submission

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	filePrefix = "form-submission-"
	fileExt    = ".json"

	// isoMillis matches the ISO 8601 UTC form with millisecond precision.
	isoMillis = "2006-01-02T15:04:05.000Z"

	// maxNameAttempts bounds how far a colliding timestamp is bumped.
	maxNameAttempts = 1000
)

var nameReplacer = strings.NewReplacer(":", "-", ".", "-")

// FileName returns the artifact name for a submission written at t, e.g.
// form-submission-2024-05-01T12-30-45-123Z.json.
func FileName(t time.Time) string {
	return filePrefix + nameReplacer.Replace(t.UTC().Format(isoMillis)) + fileExt
}

// FileStore writes each submission to its own file in a single directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. With create set, dir is created if missing;
// otherwise a missing directory surfaces as a write failure.
func NewFileStore(dir string, create bool) (*FileStore, error) {
	if create {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory %s: %w", dir, err)
		}
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Write serializes doc with a 2-space indent under the name for at. A name already on disk
// is never overwritten: the timestamp is moved forward one millisecond until a free name is
// found. It returns the name and the timestamp actually used.
func (s *FileStore) Write(at time.Time, doc interface{}) (string, time.Time, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("serialize submission: %w", err)
	}

	ts := at.UTC().Truncate(time.Millisecond)
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		name := FileName(ts)
		err := writeExclusive(filepath.Join(s.dir, name), data)
		if err == nil {
			return name, ts, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", time.Time{}, err
		}
		ts = ts.Add(time.Millisecond)
	}
	return "", time.Time{}, fmt.Errorf("no free file name within %d attempts from %s", maxNameAttempts, FileName(at))
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// Writable checks that a file can be created in the directory.
func (s *FileStore) Writable() error {
	f, err := os.CreateTemp(s.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
