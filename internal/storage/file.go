package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileKV implements KV using a single JSON object file.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV creates a new FileKV with the given file path.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path returns the storage file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get implements KV.
func (f *FileKV) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set implements KV.
func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return f.write(entries)
}

// Delete implements KV.
func (f *FileKV) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return f.write(entries)
}

// read loads all entries. A missing or empty file is an empty map.
// A file that is not a JSON object is moved aside to a timestamped
// ".corrupt-" backup and reported with an error wrapping ErrCorrupt, so the
// next read starts from an empty file.
func (f *FileKV) read() (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}

	if err := json.Unmarshal(data, &entries); err != nil {
		backup := f.path + ".corrupt-" + time.Now().UTC().Format("20060102T150405.000000000")
		if renameErr := os.Rename(f.path, backup); renameErr != nil {
			return nil, fmt.Errorf("read %s: %w", f.path, errors.Join(err, renameErr))
		}
		return nil, fmt.Errorf("read %s: %w: %v (moved to %s)", f.path, ErrCorrupt, err, backup)
	}
	if entries == nil {
		entries = make(map[string]string)
	}
	return entries, nil
}

// write replaces the file contents via a temp file and rename.
// Creates the directory if it doesn't exist.
func (f *FileKV) write(entries map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.path)
}
