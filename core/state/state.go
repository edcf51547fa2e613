// Package state implements the account-balance ledger: the two pure,
// deterministic helpers the chain engine folds every transaction through.
package state

import (
	"math"

	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/core/types"
)

// State maps an address to its balance. A missing key is semantically
// balance 0 — callers must not rely on key presence to mean anything.
type State map[common.Address]uint64

// New returns an empty ledger.
func New() State {
	return make(State)
}

// Clone returns a deep copy of s, for projecting mempool-inclusive state
// without mutating the confirmed ledger.
func (s State) Clone() State {
	cp := make(State, len(s))
	for addr, bal := range s {
		cp[addr] = bal
	}
	return cp
}

// IsTxValidAgainstState reports whether tx can be applied to s: coinbase
// transactions are always valid (they mint supply), and a user
// transaction is valid iff the sender's balance covers amount+fee without
// overflowing.
func IsTxValidAgainstState(s State, tx *types.Transaction) bool {
	if tx.IsCoinbase() {
		return true
	}
	if tx.Amount > math.MaxUint64-tx.Fee {
		return false // amount+fee would overflow
	}
	return s[tx.From] >= tx.Amount+tx.Fee
}

// ApplyTransaction folds tx into s in place. The caller must have already
// confirmed IsTxValidAgainstState(s, tx); this function performs no
// defensive checks of its own. Fees are not credited to a miner here —
// they are already embedded in the coinbase amount of the block being
// applied.
func ApplyTransaction(s State, tx *types.Transaction) {
	if !tx.IsCoinbase() {
		s[tx.From] -= tx.Amount + tx.Fee
	}
	s[tx.To] += tx.Amount
}

// Rebuild folds every transaction of every block in order, starting from
// an empty ledger — the canonical definition of chain state.
func Rebuild(blocks []*types.Block) State {
	s := New()
	for _, b := range blocks {
		for _, tx := range b.Transactions {
			ApplyTransaction(s, tx)
		}
	}
	return s
}
