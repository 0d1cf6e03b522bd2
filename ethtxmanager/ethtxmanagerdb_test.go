package ethtxmanager

import (
	"testing"

	"github.com/TEENet-io/escrow-go/common"
	"github.com/TEENet-io/escrow-go/database"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalizationOps(t *testing.T) {
	db, err := database.OpenSqlite("")
	require.NoError(t, err)
	defer db.Close()

	mgrdb, err := NewEthTxManagerDB(db)
	require.NoError(t, err)
	defer mgrdb.Close()

	f := &Finalization{
		MessageHash:  common.RandBytes32(),
		Nonce:        common.RandBytes32(),
		SourceDomain: 6,
		BurnTxHash:   common.RandBytes32(),
	}

	_, ok, err := mgrdb.GetFinalization(f.MessageHash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, mgrdb.InsertPending(f))
	got, ok, err := mgrdb.GetFinalization(f.MessageHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Pending, got.Status)
	assert.Equal(t, f.Nonce, got.Nonce)
	assert.Equal(t, f.BurnTxHash, got.BurnTxHash)
	assert.Equal(t, ethcommon.Hash{}, got.MintTxHash)

	mintTx := common.RandBytes32()
	require.NoError(t, mgrdb.SetMintTx(f.MessageHash, mintTx))
	require.NoError(t, mgrdb.UpdateStatus(f.MessageHash, Reverted, "out of gas"))

	reverted, err := mgrdb.GetFinalizationsByStatus(Reverted)
	require.NoError(t, err)
	require.Len(t, reverted, 1)
	assert.Equal(t, "out of gas", reverted[0].Reason)
	assert.Equal(t, f.MessageHash, reverted[0].MessageHash)

	// retry without a burn tx keeps the known one and clears the outcome
	retry := &Finalization{MessageHash: f.MessageHash, Nonce: f.Nonce, SourceDomain: 6}
	require.NoError(t, mgrdb.InsertPending(retry))
	got, _, err = mgrdb.GetFinalization(f.MessageHash)
	require.NoError(t, err)
	assert.Equal(t, Pending, got.Status)
	assert.Equal(t, f.BurnTxHash, got.BurnTxHash)
	assert.Equal(t, ethcommon.Hash{}, got.MintTxHash)
	assert.Empty(t, got.Reason)

	assert.ErrorIs(t, mgrdb.UpdateStatus(f.MessageHash, "lost", ""), ErrInvalidStatus)

	none, err := mgrdb.GetFinalizationsByStatus(Minted)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFinalizationRejectsZeroHash(t *testing.T) {
	db, err := database.OpenSqlite("")
	require.NoError(t, err)
	defer db.Close()

	mgrdb, err := NewEthTxManagerDB(db)
	require.NoError(t, err)
	defer mgrdb.Close()

	assert.Error(t, mgrdb.InsertPending(&Finalization{Nonce: common.RandBytes32()}))
}
