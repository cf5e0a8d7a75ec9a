package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File keeps all blobs in one JSON document, loaded at open and rewritten
// atomically (temp file + rename) on every Set.
type File struct {
	mu              sync.RWMutex
	values          map[string]string
	filePath        string
	filePermissions os.FileMode
	dirPermissions  os.FileMode
}

// PersistenceFile represents the file structure for JSON persistence
type PersistenceFile struct {
	Version string            `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Values  map[string]string `json:"values"`
}

// NewFile opens the JSON store at filePath. A missing file starts empty;
// an unreadable one is reported so it is not silently overwritten.
func NewFile(filePath string) (*File, error) {
	if filePath == "" {
		filePath = filepath.Join(os.TempDir(), "coinboard", "data.json")
	}
	f := &File{
		values:          make(map[string]string),
		filePath:        filePath,
		filePermissions: 0o644,
		dirPermissions:  0o755,
	}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

// Get returns the value stored under key, or ErrNotFound.
func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key and persists the whole document.
func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = value
	if err := f.save(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

// Close is a no-op; every Set is already durable.
func (f *File) Close() error { return nil }

// save persists state to file. Caller holds the lock.
func (f *File) save() error {
	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, f.dirPermissions); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := PersistenceFile{
		Version: "1.0",
		SavedAt: time.Now(),
		Values:  f.values,
	}
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temporary file first (atomic write)
	tempPath := f.filePath + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, f.filePermissions); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempPath, f.filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (f *File) load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Clean up any stale temp files from previous crashes
	tempPath := f.filePath + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	jsonData, err := os.ReadFile(f.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var data PersistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	if data.Values != nil {
		f.values = data.Values
	}
	return nil
}
