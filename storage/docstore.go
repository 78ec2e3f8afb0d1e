// Package storage provides durable key-document persistence for the audit
// collections. Documents are whole JSON files replaced atomically so readers
// see either the previous version or the new one, never a torn write.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned when a named document has never been written.
var ErrNotFound = errors.New("document not found")

// DocumentStore is the narrow persistence contract the repositories consume.
type DocumentStore interface {
	ReadDocument(name string) ([]byte, error)
	WriteDocumentAtomic(name string, data []byte) error
}

// FileStore keeps each document as a JSON file under a data directory.
type FileStore struct {
	dir string
}

// NewFileStore initializes a file-backed document store, creating the data
// directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// ReadDocument returns the current contents of the named document.
func (s *FileStore) ReadDocument(name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}
	return data, nil
}

// WriteDocumentAtomic replaces the named document. The bytes land in a
// temporary file first and are moved into place with a rename, so a crash
// mid-write leaves the old document intact.
func (s *FileStore) WriteDocumentAtomic(name string, data []byte) error {
	target := s.path(name)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document %s: %w", name, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("failed to replace document %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
