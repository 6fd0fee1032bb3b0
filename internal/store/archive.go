package store

import (
	"context"
	"fmt"

	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/repository"
)

// Moved reports how many records left pending, per bucket.
type Moved map[domain.DateBucket]int

// Total sums the moved records.
func (m Moved) Total() int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// ArchivePending moves every non-empty pending bucket of c accepted by due
// onto the end of the archived bucket with the same key, then removes it
// from pending. Existing archived records keep their order. Both keys are
// rewritten in one transaction, so a failure leaves c untouched.
func (s *Store) ArchivePending(ctx context.Context, c domain.Category, due func(domain.DateBucket) bool) (Moved, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	moved := Moved{}
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		pending, err := s.loadForWrite(ctx, kv, c.PendingKey())
		if err != nil {
			return err
		}
		targets := make([]domain.DateBucket, 0, len(pending))
		for _, b := range pending.Buckets() {
			if due == nil || due(b) {
				targets = append(targets, b)
			}
		}
		if len(targets) == 0 {
			return nil
		}

		archived, err := s.loadForWrite(ctx, kv, c.ArchivedKey())
		if err != nil {
			return err
		}
		for _, b := range targets {
			recs := pending[b]
			archived[b] = append(archived[b], recs...)
			delete(pending, b)
			moved[b] = len(recs)
		}
		if err := putLog(ctx, kv, c.ArchivedKey(), archived); err != nil {
			return err
		}
		return putLog(ctx, kv, c.PendingKey(), pending)
	})
	if err != nil {
		return nil, fmt.Errorf("archiving %s: %w", c, err)
	}
	return moved, nil
}
