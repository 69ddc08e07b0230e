package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// JSONFileStore keeps each document as <dir>/<name>.json.
type JSONFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewJSONFileStore creates the data directory if needed.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := validateString(dir, "dir"); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &JSONFileStore{dir: dir}, nil
}

// Path returns the file backing doc.
func (s *JSONFileStore) Path(doc Document) string {
	return filepath.Join(s.dir, string(doc)+".json")
}

// Load decodes the document into v. A missing or empty file leaves v untouched.
func (s *JSONFileStore) Load(ctx context.Context, doc Document, v any) error {
	if err := validateDocument(ctx, doc); err != nil {
		return err
	}

	s.mu.Lock()
	data, err := os.ReadFile(s.Path(doc))
	s.mu.Unlock()

	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", doc, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", doc, err)
	}
	return nil
}

// Save overwrites the document with v, pretty-printed. The file is replaced through a
// rename so readers never observe a half-written document.
func (s *JSONFileStore) Save(ctx context.Context, doc Document, v any) error {
	if err := validateDocument(ctx, doc); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", doc, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, string(doc)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", doc, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", doc, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", doc, err)
	}
	if err := os.Rename(tmpPath, s.Path(doc)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", doc, err)
	}

	slog.Debug("saved document", "document", doc, "bytes", len(data))
	return nil
}

// Close is a no-op; files are closed after every operation.
func (s *JSONFileStore) Close() error {
	return nil
}
