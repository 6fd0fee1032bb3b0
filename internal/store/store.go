package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/daylog/internal/clock"
	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/events"
	"github.com/alexanderramin/daylog/internal/repository"
	"github.com/google/uuid"
)

// Store owns every category log, both namespaces, and the important-date
// mapping. Writes are serialized; each write runs in its own transaction.
type Store struct {
	kv       repository.KVRepo
	uow      db.UnitOfWork
	clock    clock.Clock
	logger   *slog.Logger
	listener events.Listener

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithListener(l events.Listener) Option {
	return func(s *Store) {
		s.listener = events.OrNoop(l)
	}
}

// New creates a Store. kv serves reads outside transactions; uow scopes every
// write.
func New(kv repository.KVRepo, uow db.UnitOfWork, clk clock.Clock, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		uow:      uow,
		clock:    clk,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		listener: events.Noop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the bucket of the current wall-clock date.
func (s *Store) Today() domain.DateBucket {
	return domain.BucketOf(s.clock.Now())
}

// AppendPending validates values against the category schema and appends a
// new record to today's pending bucket. The returned record carries its
// assigned ID and timestamp. Timestamps never decrease within a bucket.
func (s *Store) AppendPending(ctx context.Context, c domain.Category, values map[string]any) (domain.Record, error) {
	if !c.Valid() {
		return domain.Record{}, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}
	fields, err := c.Schema().Validate(values)
	if err != nil {
		return domain.Record{}, fmt.Errorf("%s: %w", c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	bucket := domain.BucketOf(now)
	if c == domain.CategoryFinance {
		domain.NormalizeFinance(fields, bucket)
	}
	rec := domain.Record{
		ID:        uuid.New().String(),
		Timestamp: now.Truncate(time.Millisecond),
		Fields:    fields,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		pending, err := s.loadForWrite(ctx, kv, c.PendingKey())
		if err != nil {
			return err
		}
		if recs := pending[bucket]; len(recs) > 0 {
			if last := recs[len(recs)-1].Timestamp; rec.Timestamp.Before(last) {
				rec.Timestamp = last
			}
		}
		pending[bucket] = append(pending[bucket], rec)
		return putLog(ctx, kv, c.PendingKey(), pending)
	})
	if err != nil {
		return domain.Record{}, fmt.Errorf("appending %s record: %w", c, err)
	}

	s.logger.DebugContext(ctx, "record appended", "category", string(c), "bucket", string(bucket), "id", rec.ID)
	s.listener.OnAppend(ctx, c, rec)
	return rec, nil
}

// ReadPending returns the full pending log of c. A corrupt stored value reads
// as an empty log.
func (s *Store) ReadPending(ctx context.Context, c domain.Category) (domain.CategoryLog, error) {
	return s.readLog(ctx, c, c.PendingKey())
}

// ReadArchived returns the full archived log of c. A corrupt stored value
// reads as an empty log.
func (s *Store) ReadArchived(ctx context.Context, c domain.Category) (domain.CategoryLog, error) {
	return s.readLog(ctx, c, c.ArchivedKey())
}

func (s *Store) readLog(ctx context.Context, c domain.Category, key string) (domain.CategoryLog, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}
	log, err := s.load(ctx, s.kv, key)
	if err != nil {
		return nil, err
	}
	schema := c.Schema()
	for _, recs := range log {
		for _, r := range recs {
			schema.Fill(r.Fields)
		}
	}
	return log, nil
}

// ExportAll captures both namespaces of every category plus the important
// dates. Corrupt values export as empty logs; any other read failure aborts
// the export so a partial snapshot is never produced.
func (s *Store) ExportAll(ctx context.Context) (domain.Snapshot, error) {
	snap := domain.Snapshot{Categories: make(map[domain.Category]domain.CategorySnapshot)}
	for _, c := range domain.Categories() {
		pending, err := s.load(ctx, s.kv, c.PendingKey())
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("exporting %s: %w", c, err)
		}
		archived, err := s.load(ctx, s.kv, c.ArchivedKey())
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("exporting %s: %w", c, err)
		}
		snap.Categories[c] = domain.CategorySnapshot{Pending: pending, Archived: archived}
	}
	dates, err := s.ImportantDates(ctx)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("exporting important dates: %w", err)
	}
	snap.ImportantDates = dates
	return snap, nil
}

// ReplaceAll overwrites every category's pending and archived logs and the
// important dates with snap in a single transaction. Categories absent from
// snap end up empty. The snapshot is validated before anything is written.
func (s *Store) ReplaceAll(ctx context.Context, snap domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		for _, c := range domain.Categories() {
			cs := snap.Categories[c]
			if err := putLog(ctx, kv, c.PendingKey(), cs.Pending); err != nil {
				return err
			}
			if err := putLog(ctx, kv, c.ArchivedKey(), cs.Archived); err != nil {
				return err
			}
		}
		return putImportantDates(ctx, kv, snap.ImportantDates)
	})
	if err != nil {
		return fmt.Errorf("replacing store: %w", err)
	}
	s.logger.InfoContext(ctx, "store replaced", "records", snap.RecordCount(), "important_dates", len(snap.ImportantDates))
	return nil
}

// RecordCount totals every pending and archived record.
func (s *Store) RecordCount(ctx context.Context) (int, error) {
	snap, err := s.ExportAll(ctx)
	if err != nil {
		return 0, err
	}
	return snap.RecordCount(), nil
}

// load decodes the log stored under key. Missing keys and corrupt values both
// yield an empty log; corruption is logged.
func (s *Store) load(ctx context.Context, kv repository.KVRepo, key string) (domain.CategoryLog, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.CategoryLog{}, nil
		}
		return nil, err
	}
	log, err := decodeLog(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "treating stored value as empty", "key", key,
			"error", fmt.Errorf("%w: %v", ErrStorageCorrupt, err))
		return domain.CategoryLog{}, nil
	}
	return log, nil
}

// loadForWrite behaves like load but moves a corrupt value aside before the
// caller overwrites the key, so the raw bytes survive for inspection.
func (s *Store) loadForWrite(ctx context.Context, kv repository.KVRepo, key string) (domain.CategoryLog, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.CategoryLog{}, nil
		}
		return nil, err
	}
	log, err := decodeLog(raw)
	if err == nil {
		return log, nil
	}
	quarantine := QuarantineKey(key, s.clock.Now())
	s.logger.WarnContext(ctx, "quarantining corrupt value", "key", key, "quarantine_key", quarantine,
		"error", fmt.Errorf("%w: %v", ErrStorageCorrupt, err))
	if err := kv.Put(ctx, quarantine, raw); err != nil {
		return nil, err
	}
	return domain.CategoryLog{}, nil
}

// QuarantineKey names the key a corrupt value under key is moved to.
func QuarantineKey(key string, at time.Time) string {
	return fmt.Sprintf("%s.corrupt-%d", key, at.UnixMilli())
}

func decodeLog(raw string) (domain.CategoryLog, error) {
	var log domain.CategoryLog
	if err := json.Unmarshal([]byte(raw), &log); err != nil {
		return nil, err
	}
	if log == nil {
		log = domain.CategoryLog{}
	}
	for b := range log {
		if !b.Valid() {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidDate, b)
		}
	}
	return log, nil
}

// putLog writes log under key, dropping empty buckets. An empty log removes
// the key.
func putLog(ctx context.Context, kv repository.KVRepo, key string, log domain.CategoryLog) error {
	trimmed := make(domain.CategoryLog, len(log))
	for b, recs := range log {
		if len(recs) > 0 {
			trimmed[b] = recs
		}
	}
	if len(trimmed) == 0 {
		return kv.Delete(ctx, key)
	}
	data, err := json.Marshal(trimmed)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return kv.Put(ctx, key, string(data))
}
