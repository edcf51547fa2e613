package txpool

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/core/state"
	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/walletkey"
)

func signed(t *testing.T, kp *walletkey.KeyPair, to common.Address, amount, fee, nonce uint64) *types.Transaction {
	t.Helper()
	tx := types.NewTransaction(kp.Address(), to, amount, fee, nonce)
	h := tx.Hash()
	tx.Signature = kp.Sign(h[:])
	return tx
}

func TestAddAcceptsFundedTransaction(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)

	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	tx := signed(t, kp, common.Address{9}, 10, 1, 0)
	require.NoError(t, p.Add(base, tx))
	require.Equal(t, 1, p.Len())
}

func TestAddRejectsUnsignedTransaction(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	tx := types.NewTransaction(kp.Address(), common.Address{9}, 10, 1, 0)
	require.Error(t, p.Add(base, tx))
	require.Equal(t, 0, p.Len())
}

func TestAddRejectsInsufficientProjectedBalance(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 10

	p := New(walletkey.Verify)
	first := signed(t, kp, common.Address{9}, 8, 1, 0)
	require.NoError(t, p.Add(base, first))

	second := signed(t, kp, common.Address{9}, 8, 1, 1) // only 1 left, needs 9
	require.Error(t, p.Add(base, second))
	require.Equal(t, 1, p.Len())
}

func TestAddSameTransactionTwiceIsNoop(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	tx := signed(t, kp, common.Address{9}, 10, 1, 0)
	require.NoError(t, p.Add(base, tx))
	require.NoError(t, p.Add(base, tx))
	require.Equal(t, 1, p.Len())
}

func TestDrainEmptiesPoolInFIFOOrder(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	tx1 := signed(t, kp, common.Address{1}, 1, 0, 0)
	tx2 := signed(t, kp, common.Address{2}, 1, 0, 1)
	require.NoError(t, p.Add(base, tx1))
	require.NoError(t, p.Add(base, tx2))

	drained := p.Drain()
	require.Equal(t, []*types.Transaction{tx1, tx2}, drained)
	require.Equal(t, 0, p.Len())
}

func TestRequeueRestoresTransactionsToFront(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	stale := signed(t, kp, common.Address{1}, 1, 0, 0)
	fresh := signed(t, kp, common.Address{2}, 1, 0, 1)

	p.Requeue([]*types.Transaction{stale})
	require.NoError(t, p.Add(base, fresh))

	drained := p.Drain()
	require.Equal(t, []*types.Transaction{stale, fresh}, drained)
}

func TestContainsReportsQueuedHash(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	base := state.New()
	base[kp.Address()] = 100

	p := New(walletkey.Verify)
	tx := signed(t, kp, common.Address{1}, 1, 0, 0)
	require.False(t, p.Contains(tx.Hash()))
	require.NoError(t, p.Add(base, tx))
	require.True(t, p.Contains(tx.Hash()))
}
