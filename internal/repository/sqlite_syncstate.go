package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
)

// Keys used to persist the backup configuration alongside the records.
const (
	KeyCredential = "github_pat"
	KeyDocumentID = "github_gist_id"
	KeyUsername   = "github_username"
	KeyLastSync   = "github_last_sync"
	KeyAccount    = "github_user_info"
)

var syncStateKeys = []string{KeyCredential, KeyDocumentID, KeyUsername, KeyLastSync, KeyAccount}

// SQLiteSyncStateRepo stores a SyncState as a group of kv entries.
type SQLiteSyncStateRepo struct {
	kv *SQLiteKVRepo
}

func NewSQLiteSyncStateRepo(db db.DBTX) *SQLiteSyncStateRepo {
	return &SQLiteSyncStateRepo{kv: NewSQLiteKVRepo(db)}
}

// Load returns the stored state. A partially stored state (credential with
// no document or the reverse) is reported as disconnected.
func (r *SQLiteSyncStateRepo) Load(ctx context.Context) (domain.SyncState, error) {
	values := make(map[string]string, len(syncStateKeys))
	for _, k := range syncStateKeys {
		v, err := r.kv.Get(ctx, k)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return domain.SyncState{}, err
		}
		values[k] = v
	}

	state := domain.SyncState{
		Credential: values[KeyCredential],
		DocumentID: values[KeyDocumentID],
		LastSync:   parseTime(values[KeyLastSync]),
	}
	if raw := values[KeyAccount]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &state.Account); err != nil {
			state.Account = domain.Account{}
		}
	}
	if state.Account.Login == "" {
		state.Account.Login = values[KeyUsername]
	}
	if !state.Connected() {
		return domain.SyncState{}, nil
	}
	return state, nil
}

func (r *SQLiteSyncStateRepo) Save(ctx context.Context, s domain.SyncState) error {
	account, err := json.Marshal(s.Account)
	if err != nil {
		return fmt.Errorf("encoding account: %w", err)
	}
	entries := []struct{ key, value string }{
		{KeyCredential, s.Credential},
		{KeyDocumentID, s.DocumentID},
		{KeyUsername, s.Account.Login},
		{KeyAccount, string(account)},
	}
	for _, e := range entries {
		if err := r.kv.Put(ctx, e.key, e.value); err != nil {
			return err
		}
	}
	if s.LastSync == nil {
		return r.kv.Delete(ctx, KeyLastSync)
	}
	return r.kv.Put(ctx, KeyLastSync, timeToString(s.LastSync))
}

// Clear removes every backup key.
func (r *SQLiteSyncStateRepo) Clear(ctx context.Context) error {
	for _, k := range syncStateKeys {
		if err := r.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
