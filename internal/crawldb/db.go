package crawldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("crawl database not found")
	ErrNotSQLite = errors.New("file is not a SQLite database")
	ErrSchema    = errors.New("crawl database schema is incomplete")
)

// sqliteMagic is the first 16 bytes of any SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

// requiredTables are the crawler tables every analysis reads from.
var requiredTables = []string{
	"site_visits",
	"consent_crawl_results",
	"consent_data",
	"javascript_cookies",
}

// DB is a read-only handle on a consent crawl database.
type DB struct {
	db      *sql.DB
	path    string
	cleanup func()
}

type options struct {
	snapshot bool
}

// Option configures Open.
type Option func(*options)

// WithSnapshot makes Open copy the database (and its -wal/-shm companions) to a
// temporary directory and read the copy, so a crawler still writing to the
// original is never blocked.
func WithSnapshot() Option {
	return func(o *options) { o.snapshot = true }
}

// Open validates the file at path and opens it read-only.
func Open(ctx context.Context, path string, opts ...Option) (*DB, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkFile(path); err != nil {
		return nil, err
	}

	d := &DB{path: path, cleanup: func() {}}
	readPath := path
	if o.snapshot {
		tempDir, cleanup, err := SafeCopy(path)
		if err != nil {
			return nil, err
		}
		d.cleanup = cleanup
		readPath = filepath.Join(tempDir, filepath.Base(path))
	}

	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", readPath))
	if err != nil {
		d.cleanup()
		return nil, fmt.Errorf("error: cannot open crawl database: %w", err)
	}
	d.db = db

	if err := d.checkSchema(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// Path returns the path the database was opened from.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database and removes any snapshot.
func (d *DB) Close() error {
	var err error
	if d.db != nil {
		err = d.db.Close()
		d.db = nil
	}
	d.cleanup()
	return err
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if info.IsDir() {
		return fmt.Errorf("error: %s is a directory, expected a database file", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error: cannot open crawl database: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteMagic))
	n, _ := f.Read(header)
	if n < len(sqliteMagic) || string(header) != string(sqliteMagic) {
		return fmt.Errorf("%w: %s", ErrNotSQLite, path)
	}
	return nil
}

// checkSchema verifies that every table the analyses join on exists.
func (d *DB) checkSchema(ctx context.Context) error {
	for _, table := range requiredTables {
		var name string
		err := d.db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: missing table %s", ErrSchema, table)
		}
		if err != nil {
			return fmt.Errorf("error: cannot inspect crawl database schema: %w", err)
		}
	}
	return nil
}
