package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/walletkey"
)

func TestTransactionHashInjective(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)

	tx1 := NewTransaction(kp.Address(), common.Address{1}, 10, 1, 0)
	tx2 := NewTransaction(kp.Address(), common.Address{1}, 10, 1, 1)
	require.NotEqual(t, tx1.Hash(), tx2.Hash(), "distinct nonces must hash distinctly")
}

func TestTransactionSignAndVerify(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)

	tx := NewTransaction(kp.Address(), common.Address{2}, 10, 1, 0)
	h := tx.Hash()
	tx.Signature = kp.Sign(h[:])

	require.True(t, tx.IsValid(walletkey.Verify))
}

func TestTransactionInvalidSignatureRejected(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	other, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)

	tx := NewTransaction(kp.Address(), common.Address{3}, 10, 1, 0)
	h := tx.Hash()
	tx.Signature = other.Sign(h[:]) // signed by the wrong key

	require.False(t, tx.IsValid(walletkey.Verify))
}

func TestCoinbaseTransactionValid(t *testing.T) {
	tx := NewTransaction(common.Coinbase, common.Address{4}, 50, 0, 0)
	require.True(t, tx.IsValid(walletkey.Verify))
}

func TestCoinbaseTransactionRejectsFeeOrSignature(t *testing.T) {
	withFee := NewTransaction(common.Coinbase, common.Address{4}, 50, 1, 0)
	require.False(t, withFee.IsValid(walletkey.Verify))

	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	withSig := NewTransaction(common.Coinbase, common.Address{4}, 50, 0, 0)
	h := withSig.Hash()
	withSig.Signature = kp.Sign(h[:])
	require.False(t, withSig.IsValid(walletkey.Verify))
}

func TestUserTransactionRequiresSignature(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	tx := NewTransaction(kp.Address(), common.Address{5}, 10, 1, 0)
	require.False(t, tx.IsValid(walletkey.Verify))
}

func TestTransactionJSONRoundTripPreservesHash(t *testing.T) {
	kp, err := walletkey.GenerateKeyPair()
	require.NoError(t, err)
	tx := NewTransaction(kp.Address(), common.Address{6}, 10, 1, 7)
	h := tx.Hash()
	tx.Signature = kp.Sign(h[:])

	data, err := json.Marshal(tx)
	require.NoError(t, err)
	var decoded Transaction
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, tx.Hash(), decoded.Hash())
}
