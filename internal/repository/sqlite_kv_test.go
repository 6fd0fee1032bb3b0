package repository

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/alexanderramin/daylog/internal/db"
	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVRepo_Get_NotFound(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))

	_, err := repo.Get(context.Background(), "sleepData")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKVRepo_PutOverwrites(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "sleepData", `{"a":1}`))
	require.NoError(t, repo.Put(ctx, "sleepData", `{"b":2}`))

	got, err := repo.Get(ctx, "sleepData")
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, got)
}

func TestKVRepo_Delete_MissingKeyIsNoop(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "nothing"))
	require.NoError(t, repo.Put(ctx, "k", "v"))
	require.NoError(t, repo.Delete(ctx, "k"))

	_, err := repo.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKVRepo_Keys_FiltersByPrefix(t *testing.T) {
	repo := NewSQLiteKVRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	for _, k := range []string{"github_pat", "sleepData", "github_gist_id", "sleepData_TEMP"} {
		require.NoError(t, repo.Put(ctx, k, "x"))
	}

	keys, err := repo.Keys(ctx, "github_")
	require.NoError(t, err)
	assert.Equal(t, []string{"github_gist_id", "github_pat"}, keys)

	all, err := repo.Keys(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestKVRepo_WithinTx_RollbackDiscardsWrites(t *testing.T) {
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		require.NoError(t, NewSQLiteKVRepo(tx).Put(ctx, "k", "v"))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	_, err = NewSQLiteKVRepo(database).Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSyncStateRepo_EmptyWhenNothingStored(t *testing.T) {
	repo := NewSQLiteSyncStateRepo(testutil.NewTestDB(t))

	state, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, state.Connected())
	assert.Equal(t, domain.SyncState{}, state)
}

func TestSyncStateRepo_SaveLoadClear(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteSyncStateRepo(database)
	ctx := context.Background()

	synced := time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)
	in := domain.SyncState{
		Credential: "ghp_abc",
		DocumentID: "gist123",
		Account:    domain.Account{Login: "octo", Name: "Octo Cat", ID: 42},
		LastSync:   &synced,
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.True(t, out.Connected())
	assert.Equal(t, "ghp_abc", out.Credential)
	assert.Equal(t, "gist123", out.DocumentID)
	assert.Equal(t, "Octo Cat", out.Account.DisplayName())
	require.NotNil(t, out.LastSync)
	assert.True(t, synced.Equal(*out.LastSync))

	username, err := NewSQLiteKVRepo(database).Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.Equal(t, "octo", username)

	require.NoError(t, repo.Clear(ctx))
	keys, err := NewSQLiteKVRepo(database).Keys(ctx, "github_")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSyncStateRepo_PartialStateIsDisconnected(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewSQLiteKVRepo(database).Put(ctx, KeyCredential, "ghp_abc"))

	state, err := NewSQLiteSyncStateRepo(database).Load(ctx)
	require.NoError(t, err)
	assert.False(t, state.Connected())
	assert.Empty(t, state.Credential)
}

func TestIsQuotaError(t *testing.T) {
	assert.False(t, isQuotaError(assert.AnError))
	assert.True(t, isQuotaError(syscall.ENOSPC))
}
