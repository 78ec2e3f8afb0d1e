package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.WriteDocumentAtomic("submissions", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	data, err := store.ReadDocument("submissions")
	if err != nil {
		t.Fatalf("Failed to read document: %v", err)
	}
	if string(data) != `[{"id":"a"}]` {
		t.Errorf("Unexpected document contents: %s", data)
	}
}

func TestFileStoreNotFound(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	_, err = store.ReadDocument("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestFileStoreOverwriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if err := store.WriteDocumentAtomic("doc", []byte("one")); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}
	if err := store.WriteDocumentAtomic("doc", []byte("two")); err != nil {
		t.Fatalf("Failed to overwrite document: %v", err)
	}

	data, err := store.ReadDocument("doc")
	if err != nil {
		t.Fatalf("Failed to read document: %v", err)
	}
	if string(data) != "two" {
		t.Errorf("Expected latest contents, got %s", data)
	}

	if _, err := os.Stat(filepath.Join(dir, "doc.json.tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Error("Expected temp file to be gone after rename")
	}
}
