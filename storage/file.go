package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"weather-app/models"
)

// FileStore keeps the location record in a JSON file keyed like the SQLite table
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path; the file is created on first save
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// SaveLocation writes the record to a temp file and renames it over the old one
func (f *FileStore) SaveLocation(ctx context.Context, loc models.Location) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(map[string]models.Location{LocationKey: loc}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

// LoadLocation reads the record; a missing file or key means nothing was saved
func (f *FileStore) LoadLocation(ctx context.Context) (models.Location, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Location{}, false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Location{}, false, nil
		}
		return models.Location{}, false, fmt.Errorf("read %s: %w", f.path, err)
	}

	var records map[string]models.Location
	if err := json.Unmarshal(data, &records); err != nil {
		return models.Location{}, false, fmt.Errorf("decode %s: %w", f.path, err)
	}

	loc, ok := records[LocationKey]
	return loc, ok, nil
}

func (f *FileStore) Close() error {
	return nil
}

var _ LocationStore = (*FileStore)(nil)
