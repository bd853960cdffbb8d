package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/dsatrack/internal/progress"
	"github.com/abhisek/dsatrack/internal/spacedrep"
)

// DefaultBackupKeep is how many backups are retained after each new one.
const DefaultBackupKeep = 5

// Store owns the progress map. Every mutation writes the full map to the
// backend before returning; if the write fails the in-memory map keeps its
// previous value, so memory and storage never diverge.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	sched      *spacedrep.Scheduler
	log        *zap.Logger
	backupKeep int
	records    progress.Map
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithBackupKeep sets how many backups are kept after pruning.
func WithBackupKeep(n int) Option {
	return func(s *Store) { s.backupKeep = n }
}

// WithScheduler replaces the default scheduler.
func WithScheduler(sched *spacedrep.Scheduler) Option {
	return func(s *Store) { s.sched = sched }
}

// New creates a Store over backend. Call Load before use; until then the
// store is empty.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		sched:      spacedrep.NewScheduler(),
		log:        zap.NewNop(),
		backupKeep: DefaultBackupKeep,
		records:    progress.Map{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load reads the persisted map, replacing what is in memory. It never fails:
// an unreadable or corrupt blob is logged and the store starts empty. Legacy
// boolean values are upgraded as part of decoding.
func (s *Store) Load(ctx context.Context) progress.Map {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = progress.Map{}

	blob, err := s.backend.Read(ctx)
	if err != nil {
		s.log.Warn("storage unreadable, starting empty", zap.Error(err))
		return s.records.Clone()
	}
	if blob == nil {
		return s.records.Clone()
	}

	m, err := progress.Decode(blob)
	if err != nil {
		s.log.Warn("storage corrupt, starting empty",
			zap.Error(err),
			zap.Int("bytes", len(blob)),
		)
		return s.records.Clone()
	}
	s.records = m
	return s.records.Clone()
}

// Get returns the record for id, or the default record. Never mutates.
func (s *Store) Get(id string) progress.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Get(id).Clone()
}

// Snapshot returns a deep copy of the current map.
func (s *Store) Snapshot() progress.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Clone()
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// SetDone sets the done flag for id, keeping its other fields.
func (s *Store) SetDone(ctx context.Context, id string, done bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records.Get(id)
	rec.Done = done
	return s.putLocked(ctx, id, rec)
}

// SetNotes replaces the notes for id, keeping its other fields.
func (s *Store) SetNotes(ctx context.Context, id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.records.Get(id)
	rec.Notes = text
	return s.putLocked(ctx, id, rec)
}

// ApplyReview records a review of id rated r at now. The entry becomes done
// and its schedule comes from the scheduler. Returns the stored record.
func (s *Store) ApplyReview(ctx context.Context, id string, r spacedrep.Rating, now time.Time) (progress.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.sched.Apply(s.records.Get(id), r, now)
	if err != nil {
		return progress.Record{}, fmt.Errorf("apply review: %w", err)
	}
	if err := s.putLocked(ctx, id, rec); err != nil {
		return progress.Record{}, err
	}
	return rec.Clone(), nil
}

// ExportAll returns the map in its persisted serialization.
func (s *Store) ExportAll() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return progress.Encode(s.records)
}

// ImportAll replaces the whole map with the one in blob. The blob must be a
// JSON object of progress records; otherwise an *ImportError with kind
// InvalidFormat is returned and nothing changes. Backends that keep backups
// save the previous map first.
func (s *Store) ImportAll(ctx context.Context, blob []byte) error {
	if err := progress.Validate(blob); err != nil {
		return &ImportError{Kind: InvalidFormat, Err: err}
	}
	m, err := progress.Decode(blob)
	if err != nil {
		return &ImportError{Kind: InvalidFormat, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.backupLocked(ctx, "import")
	return s.commitLocked(ctx, m)
}

// ResetAll clears every record.
func (s *Store) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backupLocked(ctx, "reset")
	return s.commitLocked(ctx, progress.Map{})
}

// Backups returns the backend's backup repository, if it has one.
func (s *Store) Backups() (BackupRepo, bool) {
	repo, ok := s.backend.(BackupRepo)
	return repo, ok
}

// RestoreBackup replaces the map with the backup labelled label. The current
// map is backed up first.
func (s *Store) RestoreBackup(ctx context.Context, label string) error {
	repo, ok := s.Backups()
	if !ok {
		return ErrBackupsUnsupported
	}
	bk, err := repo.GetBackup(ctx, label)
	if err != nil {
		return err
	}
	m, err := progress.Decode(bk.Data)
	if err != nil {
		return fmt.Errorf("decode backup %s: %w", label, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.backupLocked(ctx, "restore")
	return s.commitLocked(ctx, m)
}

// putLocked stores rec under id and persists.
func (s *Store) putLocked(ctx context.Context, id string, rec progress.Record) error {
	next := maps.Clone(s.records)
	if next == nil {
		next = progress.Map{}
	}
	next[id] = rec
	return s.commitLocked(ctx, next)
}

// commitLocked persists next and, on success, makes it current.
func (s *Store) commitLocked(ctx context.Context, next progress.Map) error {
	blob, err := progress.Encode(next)
	if err != nil {
		return err
	}
	if err := s.backend.Write(ctx, blob); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}
	s.records = next
	return nil
}

// backupLocked saves the current map before a destructive change. Failures
// are logged; they never block the change itself.
func (s *Store) backupLocked(ctx context.Context, reason string) {
	repo, ok := s.backend.(BackupRepo)
	if !ok || len(s.records) == 0 {
		return
	}
	blob, err := progress.Encode(s.records)
	if err != nil {
		s.log.Warn("encode backup", zap.Error(err))
		return
	}
	bk, err := repo.SaveBackup(ctx, reason, blob)
	if err != nil {
		s.log.Warn("save backup", zap.String("reason", reason), zap.Error(err))
		return
	}
	s.log.Debug("saved backup", zap.String("label", bk.Label), zap.String("reason", reason))

	if err := repo.PruneBackups(ctx, s.backupKeep); err != nil {
		s.log.Warn("prune backups", zap.Error(err))
	}
}

// ImportErrorKind classifies import failures.
type ImportErrorKind int

const (
	// InvalidFormat means the payload is not a JSON object of progress records.
	InvalidFormat ImportErrorKind = iota + 1
)

func (k ImportErrorKind) String() string {
	switch k {
	case InvalidFormat:
		return "invalid format"
	default:
		return fmt.Sprintf("ImportErrorKind(%d)", int(k))
	}
}

// ErrInvalidFormat matches any *ImportError of kind InvalidFormat via errors.Is.
var ErrInvalidFormat = errors.New("store: invalid import format")

// ImportError is returned by ImportAll. The store is unchanged when it is
// returned.
type ImportError struct {
	Kind ImportErrorKind
	Err  error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("import: %s", e.Kind)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *ImportError) Is(target error) bool {
	return target == ErrInvalidFormat && e.Kind == InvalidFormat
}
