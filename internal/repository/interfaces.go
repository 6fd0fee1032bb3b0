package repository

import (
	"context"

	"github.com/alexanderramin/daylog/internal/domain"
)

// KVRepo is the persistent key-value boundary: string values addressed by
// string keys, durable across restarts.
type KVRepo interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// SyncStateRepo persists the backup configuration as a unit.
type SyncStateRepo interface {
	Load(ctx context.Context) (domain.SyncState, error)
	Save(ctx context.Context, s domain.SyncState) error
	Clear(ctx context.Context) error
}
