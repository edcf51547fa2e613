// Package types defines the wire and hashing format of transactions and
// blocks: the data model the chain engine operates on.
package types

import (
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/tokinet/tokid/common"
)

// Transaction is a value transfer from From to To. A coinbase transaction
// (From == common.Coinbase) carries no fee and no signature and
// synthesizes new coin supply; every other transaction must carry a
// signature that verifies against From.
type Transaction struct {
	From      common.Address  `json:"from"`
	To        common.Address  `json:"to"`
	Amount    uint64          `json:"amount"`
	Fee       uint64          `json:"fee"`
	Nonce     uint64          `json:"nonce"`
	Signature common.HexBytes `json:"signature,omitempty"`
}

// NewTransaction builds an unsigned transaction. Callers sign it with
// walletkey before submitting (unless it is a coinbase transaction).
func NewTransaction(from, to common.Address, amount, fee, nonce uint64) *Transaction {
	return &Transaction{From: from, To: to, Amount: amount, Fee: fee, Nonce: nonce}
}

// Hash returns the transaction's canonical digest: SHA-256 over the
// delimited encoding "from|to|amount|fee|nonce". Addresses are fixed-width
// hex and amounts are decimal, so '|' cannot appear inside any field —
// the encoding is injective across field values. The same bytes are
// signed and verified.
func (tx *Transaction) Hash() common.Hash {
	return sha256.Sum256(tx.signingBytes())
}

func (tx *Transaction) signingBytes() []byte {
	s := tx.From.Hex() + "|" + tx.To.Hex() + "|" +
		strconv.FormatUint(tx.Amount, 10) + "|" +
		strconv.FormatUint(tx.Fee, 10) + "|" +
		strconv.FormatUint(tx.Nonce, 10)
	return []byte(s)
}

// IsCoinbase reports whether tx synthesizes new coin supply.
func (tx *Transaction) IsCoinbase() bool {
	return tx.From.IsCoinbase()
}

// IsValid performs the transaction's self-contained (stateless) checks:
// cryptographic validity for a user transaction, or shape validity for a
// coinbase transaction. It performs no balance check — that is a
// state-level concern (see core/state).
func (tx *Transaction) IsValid(verify func(addr common.Address, msg, sig []byte) bool) bool {
	if tx.IsCoinbase() {
		return len(tx.Signature) == 0 && tx.Fee == 0
	}
	if len(tx.Signature) == 0 {
		return false
	}
	h := tx.Hash()
	return verify(tx.From, h[:], tx.Signature)
}

// String is a compact debug representation, used by logging call sites.
func (tx *Transaction) String() string {
	h := tx.Hash()
	return fmt.Sprintf("tx{from=%s to=%s amount=%d fee=%d nonce=%d hash=%s}",
		tx.From.Hex(), tx.To.Hex(), tx.Amount, tx.Fee, tx.Nonce, h.Hex())
}
