package state

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/core/types"
)

func TestCoinbaseAlwaysValid(t *testing.T) {
	s := New()
	tx := types.NewTransaction(common.Coinbase, common.Address{1}, 50, 0, 0)
	require.True(t, IsTxValidAgainstState(s, tx))
}

func TestInsufficientBalanceRejected(t *testing.T) {
	s := New()
	s[common.Address{1}] = 5
	tx := types.NewTransaction(common.Address{1}, common.Address{2}, 10, 1, 0)
	require.False(t, IsTxValidAgainstState(s, tx))
}

func TestExactBalanceAccepted(t *testing.T) {
	s := New()
	s[common.Address{1}] = 11
	tx := types.NewTransaction(common.Address{1}, common.Address{2}, 10, 1, 0)
	require.True(t, IsTxValidAgainstState(s, tx))
}

func TestAmountFeeOverflowRejected(t *testing.T) {
	s := New()
	s[common.Address{1}] = math.MaxUint64
	tx := types.NewTransaction(common.Address{1}, common.Address{2}, math.MaxUint64, 1, 0)
	require.False(t, IsTxValidAgainstState(s, tx))
}

func TestApplyTransactionMovesBalance(t *testing.T) {
	s := New()
	s[common.Address{1}] = 100
	tx := types.NewTransaction(common.Address{1}, common.Address{2}, 10, 1, 0)
	ApplyTransaction(s, tx)
	require.EqualValues(t, 89, s[common.Address{1}])
	require.EqualValues(t, 10, s[common.Address{2}])
}

func TestApplyCoinbaseMintsSupply(t *testing.T) {
	s := New()
	tx := types.NewTransaction(common.Coinbase, common.Address{2}, 50, 0, 0)
	ApplyTransaction(s, tx)
	require.EqualValues(t, 50, s[common.Address{2}])
	require.EqualValues(t, 0, s[common.Coinbase])
}

func TestCloneIsIndependent(t *testing.T) {
	s := New()
	s[common.Address{1}] = 10
	cp := s.Clone()
	cp[common.Address{1}] = 20
	require.EqualValues(t, 10, s[common.Address{1}])
	require.EqualValues(t, 20, cp[common.Address{1}])
}

func TestRebuildFoldsAllBlocks(t *testing.T) {
	tx1 := types.NewTransaction(common.Coinbase, common.Address{1}, 50, 0, 0)
	b1 := types.NewBlock(1, 1000, []*types.Transaction{tx1}, types.GenesisPreviousHash)

	tx2 := types.NewTransaction(common.Address{1}, common.Address{2}, 10, 1, 0)
	tx3 := types.NewTransaction(common.Coinbase, common.Address{1}, 50, 0, 0)
	b2 := types.NewBlock(2, 1010, []*types.Transaction{tx2, tx3}, b1.Hash.Hex())

	s := Rebuild([]*types.Block{b1, b2})
	require.EqualValues(t, 89, s[common.Address{1}])
	require.EqualValues(t, 10, s[common.Address{2}])
}
