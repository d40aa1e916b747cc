package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/opsmock/mockserver-go/internal/model"
)

// FileBackend is the spec-mandated default: a single file holding a JSON
// array of expectation documents, coordinated across processes with
// advisory file locks and written atomically via write-temp-then-rename.
type FileBackend struct {
	Path string
}

// NewFileBackend returns a FileBackend targeting path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// Load acquires a shared lock, waiting for any writer to finish, then reads
// and parses the file. If the lock file cannot be opened (its directory does
// not exist yet), the file is read without the lock. A missing file is not
// an error — it yields an empty set.
func (b *FileBackend) Load() ([]*model.Expectation, error) {
	lock := flock.New(b.Path + ".lock")
	if err := lock.RLock(); err == nil {
		defer lock.Unlock()
	}

	data, err := os.ReadFile(b.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.Path, err)
	}

	var expectations []*model.Expectation
	if err := json.Unmarshal(data, &expectations); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.Path, err)
	}
	return expectations, nil
}

// Save acquires an exclusive lock and atomically replaces the file's
// contents via write-temp-and-rename.
func (b *FileBackend) Save(expectations []*model.Expectation) error {
	if err := os.MkdirAll(filepath.Dir(b.Path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", b.Path, err)
	}

	lock := flock.New(b.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", b.Path, err)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(expectations, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal expectations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(b.Path), ".expectations-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, b.Path); err != nil {
		return fmt.Errorf("rename temp file into place: %w", err)
	}
	return nil
}
