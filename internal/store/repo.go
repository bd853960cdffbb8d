package store

import (
	"context"
	"errors"
	"time"
)

// StorageKey is the key the progress blob is stored under.
const StorageKey = "dsa-tracker-progress"

var (
	// ErrBackupNotFound is returned when no backup has the requested label.
	ErrBackupNotFound = errors.New("store: backup not found")

	// ErrBackupsUnsupported is returned when the backend keeps no backups.
	ErrBackupsUnsupported = errors.New("store: backend does not keep backups")
)

// Backend persists the serialized progress map.
type Backend interface {
	// Read returns the stored blob, or nil if nothing has been stored yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored blob.
	Write(ctx context.Context, blob []byte) error

	// Close releases the backend's resources.
	Close() error
}

// Backup is a saved copy of the progress blob taken before a destructive
// operation (import, reset, restore).
type Backup struct {
	Label     string
	Reason    string
	CreatedAt time.Time
	Data      []byte
}

// BackupRepo is implemented by backends that keep backups.
type BackupRepo interface {
	// SaveBackup stores blob under a new label.
	SaveBackup(ctx context.Context, reason string, blob []byte) (*Backup, error)

	// ListBackups returns backups newest first.
	ListBackups(ctx context.Context) ([]Backup, error)

	// GetBackup returns the backup with label, or ErrBackupNotFound.
	GetBackup(ctx context.Context, label string) (*Backup, error)

	// PruneBackups deletes all but the keep most recent backups.
	PruneBackups(ctx context.Context, keep int) error
}
