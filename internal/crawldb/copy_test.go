package crawldb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSafeCopy_CopiesDatabaseAndJournal(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "crawl.sqlite")
	if err := os.WriteFile(srcPath, []byte("main db"), 0644); err != nil {
		t.Fatalf("failed to write main file: %v", err)
	}
	if err := os.WriteFile(srcPath+"-wal", []byte("wal data"), 0644); err != nil {
		t.Fatalf("failed to write WAL: %v", err)
	}

	tempDir, cleanup, err := SafeCopy(srcPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	copied, err := os.ReadFile(filepath.Join(tempDir, "crawl.sqlite"))
	if err != nil {
		t.Fatalf("failed to read copied file: %v", err)
	}
	if string(copied) != "main db" {
		t.Error("copied file content does not match source")
	}
	wal, err := os.ReadFile(filepath.Join(tempDir, "crawl.sqlite-wal"))
	if err != nil {
		t.Fatalf("failed to read copied WAL: %v", err)
	}
	if string(wal) != "wal data" {
		t.Error("copied WAL content does not match source")
	}
	if _, err := os.Stat(filepath.Join(tempDir, "crawl.sqlite-shm")); !os.IsNotExist(err) {
		t.Error("expected SHM not to exist when source has no SHM")
	}
}

func TestSafeCopy_CleanupRemovesTempDir(t *testing.T) {
	srcPath := filepath.Join(t.TempDir(), "crawl.sqlite")
	if err := os.WriteFile(srcPath, []byte("data"), 0644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	tempDir, cleanup, err := SafeCopy(srcPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cleanup()

	if _, err := os.Stat(tempDir); !os.IsNotExist(err) {
		t.Errorf("expected temp dir to be removed, got err=%v", err)
	}
}

func TestSafeCopy_Rejects(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.sqlite")
	if err := os.WriteFile(empty, nil, 0644); err != nil {
		t.Fatalf("failed to write empty file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"directory", dir},
		{"zero byte file", empty},
		{"missing file", filepath.Join(dir, "missing.sqlite")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := SafeCopy(tt.path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestSafeCopy_MissingIsNotFound(t *testing.T) {
	_, _, err := SafeCopy("/nonexistent/path/crawl.sqlite")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
