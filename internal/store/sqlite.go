package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	kvTable      = "kv"
	backupsTable = "backups"
)

// SQLiteBackend stores the progress blob in a key/value table and keeps
// backups in a second table.
type SQLiteBackend struct {
	db  *sql.DB
	drv *entsql.Driver
	key string
}

var (
	_ Backend    = (*SQLiteBackend)(nil)
	_ BackupRepo = (*SQLiteBackend)(nil)
)

// OpenSQLite opens the SQLite database at dsn, applies recommended pragmas
// and creates the tables if needed.
func OpenSQLite(dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	b := &SQLiteBackend{
		db:  db,
		drv: entsql.OpenDB(dialect.SQLite, db),
		key: StorageKey,
	}
	if err := b.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return b, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (b *SQLiteBackend) DB() *sql.DB {
	return b.db
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.drv.Close()
}

// migrate creates the tables. Uses raw DDL since there are only two fixed
// tables and no generated schema.
func (b *SQLiteBackend) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS backups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			label TEXT NOT NULL UNIQUE,
			reason TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if err := b.drv.Exec(ctx, s, []any{}, nil); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLiteBackend) builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// Read returns the stored blob, or nil if the key is absent.
func (b *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	d := b.builder()
	query, args := d.Select("value").
		From(d.Table(kvTable)).
		Where(entsql.EQ("key", b.key)).
		Query()

	var value string
	err := b.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.key, err)
	}
	return []byte(value), nil
}

// Write upserts the blob.
func (b *SQLiteBackend) Write(ctx context.Context, blob []byte) error {
	query, args := b.builder().Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(b.key, string(blob), time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("write %s: %w", b.key, err)
	}
	return nil
}

// applyPragmas configures SQLite for single-user use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDataDir resolves the data directory in priority order:
// 1. $XDG_DATA_HOME/dsatrack
// 2. ~/.local/share/dsatrack
func DefaultDataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "dsatrack"), nil
}

// DefaultDBPath returns the default path for the given backend kind
// ("sqlite" or "file") and ensures its directory exists.
func DefaultDBPath(kind string) (string, error) {
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	name := "progress.db"
	if kind == BackendFile {
		name = "progress.json"
	}
	p := filepath.Join(dir, name)
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
