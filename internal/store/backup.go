package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// SaveBackup stores blob as a new backup labelled with a fresh UUID.
func (b *SQLiteBackend) SaveBackup(ctx context.Context, reason string, blob []byte) (*Backup, error) {
	bk := &Backup{
		Label:     uuid.New().String(),
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
		Data:      blob,
	}

	query, args := b.builder().Insert(backupsTable).
		Columns("label", "reason", "created_at", "data").
		Values(bk.Label, bk.Reason, bk.CreatedAt.UnixMilli(), string(blob)).
		Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("save backup: %w", err)
	}
	return bk, nil
}

// ListBackups returns all backups, newest first.
func (b *SQLiteBackend) ListBackups(ctx context.Context) ([]Backup, error) {
	d := b.builder()
	query, args := d.Select("label", "reason", "created_at", "data").
		From(d.Table(backupsTable)).
		OrderBy(entsql.Desc("id")).
		Query()

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		bk, err := scanBackup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *bk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return out, nil
}

// GetBackup returns the backup with label.
func (b *SQLiteBackend) GetBackup(ctx context.Context, label string) (*Backup, error) {
	d := b.builder()
	query, args := d.Select("label", "reason", "created_at", "data").
		From(d.Table(backupsTable)).
		Where(entsql.EQ("label", label)).
		Query()

	bk, err := scanBackup(b.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, label)
	}
	if err != nil {
		return nil, err
	}
	return bk, nil
}

// PruneBackups deletes all but the keep most recent backups.
func (b *SQLiteBackend) PruneBackups(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}

	// Find the ID threshold: the newest backup that falls outside keep.
	d := b.builder()
	query, args := d.Select("id").
		From(d.Table(backupsTable)).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Offset(keep).
		Query()

	var threshold int64
	err := b.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep backups exist
	}
	if err != nil {
		return fmt.Errorf("query backups for prune: %w", err)
	}

	query, args = d.Delete(backupsTable).
		Where(entsql.LTE("id", threshold)).
		Query()
	if err := b.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBackup(row rowScanner) (*Backup, error) {
	var (
		bk        Backup
		createdAt int64
		data      string
	)
	if err := row.Scan(&bk.Label, &bk.Reason, &createdAt, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan backup: %w", err)
	}
	bk.CreatedAt = time.UnixMilli(createdAt).UTC()
	bk.Data = []byte(data)
	return &bk, nil
}
