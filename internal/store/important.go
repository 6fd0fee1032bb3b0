package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/repository"
)

// ImportantDates returns the annotation mapping. A corrupt value reads as
// empty.
func (s *Store) ImportantDates(ctx context.Context) (domain.ImportantDates, error) {
	return s.loadImportantDates(ctx, s.kv)
}

// SetImportantDate annotates day, replacing any existing annotation. Unknown
// types are stored as "other".
func (s *Store) SetImportantDate(ctx context.Context, day domain.DateBucket, typ string, label string) (domain.ImportantDate, error) {
	if !day.Valid() {
		return domain.ImportantDate{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, day)
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return domain.ImportantDate{}, fmt.Errorf("%w: important date label is required", domain.ErrInvalidRecord)
	}
	d := domain.ImportantDate{
		Type:      domain.NormalizeImportantDateType(typ),
		Label:     label,
		AddedDate: s.Today(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		dates, err := s.loadImportantDates(ctx, kv)
		if err != nil {
			return err
		}
		dates[day] = d
		return putImportantDates(ctx, kv, dates)
	})
	if err != nil {
		return domain.ImportantDate{}, fmt.Errorf("saving important date: %w", err)
	}
	return d, nil
}

// DeleteImportantDate removes the annotation of day. Missing days are not an
// error.
func (s *Store) DeleteImportantDate(ctx context.Context, day domain.DateBucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		kv := repository.NewSQLiteKVRepo(tx)
		dates, err := s.loadImportantDates(ctx, kv)
		if err != nil {
			return err
		}
		if _, ok := dates[day]; !ok {
			return nil
		}
		delete(dates, day)
		return putImportantDates(ctx, kv, dates)
	})
	if err != nil {
		return fmt.Errorf("deleting important date: %w", err)
	}
	return nil
}

func (s *Store) loadImportantDates(ctx context.Context, kv repository.KVRepo) (domain.ImportantDates, error) {
	raw, err := kv.Get(ctx, domain.ImportantDatesKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ImportantDates{}, nil
		}
		return nil, err
	}
	var dates domain.ImportantDates
	if err := json.Unmarshal([]byte(raw), &dates); err != nil {
		s.logger.WarnContext(ctx, "treating stored value as empty", "key", domain.ImportantDatesKey,
			"error", fmt.Errorf("%w: %v", ErrStorageCorrupt, err))
		return domain.ImportantDates{}, nil
	}
	if dates == nil {
		dates = domain.ImportantDates{}
	}
	for day, d := range dates {
		d.Type = domain.NormalizeImportantDateType(string(d.Type))
		dates[day] = d
	}
	return dates, nil
}

func putImportantDates(ctx context.Context, kv repository.KVRepo, dates domain.ImportantDates) error {
	if len(dates) == 0 {
		return kv.Delete(ctx, domain.ImportantDatesKey)
	}
	data, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("encoding important dates: %w", err)
	}
	return kv.Put(ctx, domain.ImportantDatesKey, string(data))
}
