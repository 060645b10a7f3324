package crawldb

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// SafeCopy copies a SQLite database (and its -wal and -shm companions if
// they exist) to a temporary directory.
//
// Returns the temporary directory path, a cleanup function that removes the
// temp directory, and an error. The caller MUST call cleanup when done.
func SafeCopy(srcPath string) (tempDir string, cleanup func(), err error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s", ErrNotFound, srcPath)
	}
	if info.IsDir() {
		return "", nil, fmt.Errorf("error: %s is a directory, expected a database file", srcPath)
	}
	if info.Size() == 0 {
		return "", nil, fmt.Errorf("error: %s is empty", srcPath)
	}

	tempDir, err = os.MkdirTemp("", "cookieaudit-db-*")
	if err != nil {
		return "", nil, fmt.Errorf("error: cannot create temp directory: %w", err)
	}

	cleanup = func() {
		os.RemoveAll(tempDir)
	}

	baseName := filepath.Base(srcPath)

	if err := copyFile(srcPath, filepath.Join(tempDir, baseName)); err != nil {
		cleanup()
		return "", nil, err
	}

	// best-effort: a missing or unreadable journal only loses uncommitted rows
	for _, suffix := range []string{"-wal", "-shm"} {
		companion := srcPath + suffix
		if _, err := os.Stat(companion); err == nil {
			_ = copyFile(companion, filepath.Join(tempDir, baseName+suffix))
		}
	}

	return tempDir, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error: cannot open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error: cannot create destination file %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("error: cannot copy file: %w", err)
	}
	return nil
}
