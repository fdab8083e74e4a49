package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheCrazyGM/mining-arc/internal/domain"
	"github.com/TheCrazyGM/mining-arc/internal/storage"
)

func testAttempt(runID, account string, attemptedAt time.Time) *domain.AttemptRecord {
	return &domain.AttemptRecord{
		RunID:       runID,
		Account:     account,
		Balance:     100,
		Amount:      decimal.RequireFromString("25.0000"),
		Status:      domain.AttemptSuccess,
		TxID:        "tx-" + account,
		AttemptedAt: attemptedAt,
	}
}

func TestAttemptStore_InsertAndGetByRunID(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	a := testAttempt("run1", "alice", base)
	require.NoError(t, store.Insert(ctx, a))

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, "alice", got[0].Account)
	assert.Equal(t, int64(100), got[0].Balance)
	assert.True(t, got[0].Amount.Equal(a.Amount), "amount %s != %s", got[0].Amount, a.Amount)
	assert.Equal(t, domain.AttemptSuccess, got[0].Status)
	assert.Equal(t, "tx-alice", got[0].TxID)
	assert.True(t, got[0].AttemptedAt.Equal(base))
}

func TestAttemptStore_DuplicateKey(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := testAttempt("run1", "alice", time.Now().UTC())
	require.NoError(t, store.Insert(ctx, a))

	err := store.Insert(ctx, a)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same account in a different run is a distinct key.
	assert.NoError(t, store.Insert(ctx, testAttempt("run2", "alice", time.Now().UTC())))
}

func TestAttemptStore_InsertBulkAtomic(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Insert(ctx, testAttempt("run1", "bob", now)))

	// Batch collides with the pre-existing row: nothing from it lands.
	batch := []*domain.AttemptRecord{
		testAttempt("run1", "alice", now),
		testAttempt("run1", "bob", now),
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAttemptStore_PreservesDecimalExactly(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := testAttempt("run1", "alice", time.Now().UTC())
	a.Amount = decimal.RequireFromString("0.0001")
	require.NoError(t, store.Insert(ctx, a))

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "0.0001", got[0].Amount.String())
}

func TestAttemptStore_GetByAccountAcrossRuns(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, testAttempt("run2", "alice", base.Add(time.Hour))))
	require.NoError(t, store.Insert(ctx, testAttempt("run1", "alice", base)))
	require.NoError(t, store.Insert(ctx, testAttempt("run1", "bob", base)))

	got, err := store.GetByAccount(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "run1", got[0].RunID)
	assert.Equal(t, "run2", got[1].RunID)
}

func TestAttemptStore_FailedAttemptStoresEmptyTxID(t *testing.T) {
	pool := setupTestDB(t)

	store := NewAttemptStore(pool)
	ctx := context.Background()

	a := testAttempt("run1", "bob", time.Now().UTC())
	a.Status = domain.AttemptFailed
	a.TxID = ""
	require.NoError(t, store.Insert(ctx, a))

	got, err := store.GetByRunID(ctx, "run1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.AttemptFailed, got[0].Status)
	assert.Empty(t, got[0].TxID)
}
