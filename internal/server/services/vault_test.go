package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/server/locks"
	"github.com/sealvault/sealvault/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newServiceDB returns a sqlmock database that satisfies the transaction
// plumbing in dbx.WithTx. Repository calls go to the in-memory manager, so
// only Begin/Commit/Rollback need expectations. Unordered matching lets
// concurrent transactions interleave.
func newServiceDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	mock.MatchExpectationsInOrder(false)
	return db, mock
}

func expectTxCommit(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
}

func expectTxRollback(mock sqlmock.Sqlmock, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}
}

func newVaultService(t *testing.T) (*VaultService, sqlmock.Sqlmock, repomanager.RepositoryManager) {
	t.Helper()
	db, mock := newServiceDB(t)
	t.Cleanup(func() { db.Close() })
	repos := repomanager.NewInMemoryRepositoryManager()
	return NewVaultService(db, repos, locks.NewPerUser()), mock, repos
}

func TestVaultRegister_PinBounds(t *testing.T) {
	s, _, _ := newVaultService(t)
	ctx := context.Background()

	err := s.Register(ctx, "u-1", "123", []byte("blob"))
	assert.ErrorIs(t, err, common.ErrorInvalidPin)

	err = s.Register(ctx, "u-1", strings.Repeat("9", 129), []byte("blob"))
	assert.ErrorIs(t, err, common.ErrorInvalidPin)
}

func TestVaultRegister_EmptyBlob(t *testing.T) {
	s, _, _ := newVaultService(t)

	err := s.Register(context.Background(), "u-1", "1234", nil)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestVaultRegister_FirstTime(t *testing.T) {
	s, mock, repos := newVaultService(t)
	ctx := context.Background()

	expectTxCommit(mock, 1)
	require.NoError(t, s.Register(ctx, "u-1", "1234", []byte("blob-v1")))

	current, err := repos.Metadata(nil).GetCurrent(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int16(0), current.Slot)
	assert.Equal(t, int64(1), current.Seq)
	assert.Equal(t, []byte("blob-v1"), current.Blob)
}

func TestVaultRegister_AlreadyRegistered(t *testing.T) {
	s, mock, _ := newVaultService(t)
	ctx := context.Background()

	expectTxCommit(mock, 1)
	require.NoError(t, s.Register(ctx, "u-1", "1234", []byte("blob-v1")))

	expectTxRollback(mock, 1)
	err := s.Register(ctx, "u-1", "1234", []byte("blob-v2"))
	assert.ErrorIs(t, err, common.ErrorAlreadyRegistered)

	// the stored blob is still the first one
	blob, err := s.Recover(ctx, "u-1", "1234")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-v1"), blob)

	// 128-character PIN is still acceptable on a fresh user
	expectTxCommit(mock, 1)
	assert.NoError(t, s.Register(ctx, "u-2", strings.Repeat("9", 128), []byte("blob")))
}

func TestVaultRecover(t *testing.T) {
	s, mock, _ := newVaultService(t)
	ctx := context.Background()

	_, err := s.Recover(ctx, "u-1", "")
	assert.ErrorIs(t, err, common.ErrorInvalidPin)

	_, err = s.Recover(ctx, "u-1", "1234")
	assert.ErrorIs(t, err, common.ErrorNotRegistered)

	expectTxCommit(mock, 1)
	require.NoError(t, s.Register(ctx, "u-1", "1234", []byte("blob-v1")))

	// recovery returns the blob regardless of the submitted PIN value,
	// it only has to be present
	blob, err := s.Recover(ctx, "u-1", "anything at all")
	require.NoError(t, err)
	assert.Equal(t, []byte("blob-v1"), blob)
}

func TestVaultRefresh_RotatesBetweenSlots(t *testing.T) {
	s, mock, repos := newVaultService(t)
	ctx := context.Background()

	expectTxCommit(mock, 3)
	require.NoError(t, s.Register(ctx, "u-1", "1234", []byte("v1")))
	require.NoError(t, s.Refresh(ctx, "u-1", []byte("v2")))
	require.NoError(t, s.Refresh(ctx, "u-1", []byte("v3")))

	current, err := repos.Metadata(nil).GetCurrent(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, int16(0), current.Slot)
	assert.Equal(t, int64(3), current.Seq)
	assert.Equal(t, []byte("v3"), current.Blob)

	// both physical slots exist and the older one still holds v2
	pair, err := repos.Metadata(nil).GetPair(ctx, "u-1")
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, []byte("v3"), pair[0].Blob)
	assert.Equal(t, []byte("v2"), pair[1].Blob)
}

func TestVaultRefresh_NotRegistered(t *testing.T) {
	s, mock, _ := newVaultService(t)

	expectTxRollback(mock, 1)
	err := s.Refresh(context.Background(), "u-1", []byte("v2"))
	assert.ErrorIs(t, err, common.ErrorNotRegistered)
}

func TestVaultRefresh_EmptyBlob(t *testing.T) {
	s, _, _ := newVaultService(t)

	err := s.Refresh(context.Background(), "u-1", nil)
	assert.ErrorIs(t, err, common.ErrorInvalidInput)
}

func TestVaultStatus(t *testing.T) {
	s, mock, _ := newVaultService(t)
	ctx := context.Background()

	status, err := s.Status(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, status.HasVault)
	assert.Nil(t, status.Metadata)

	expectTxCommit(mock, 1)
	require.NoError(t, s.Register(ctx, "u-1", "1234", []byte("blob-v1")))

	status, err = s.Status(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, status.HasVault)
	assert.Equal(t, []byte("blob-v1"), status.Metadata)
}
