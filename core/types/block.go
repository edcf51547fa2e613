package types

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strconv"

	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/consensus"
)

// GenesisPreviousHash is the literal sentinel stored as PreviousHash on the
// genesis block; it is not itself a hash of anything.
const GenesisPreviousHash = "0"

// Block is a sealed batch of transactions. Element 0 of Transactions is
// always the coinbase; elements 1..n are mempool transactions in the
// order they were admitted into the block.
type Block struct {
	Index        uint64         `json:"index"`
	Timestamp    int64          `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	PreviousHash string         `json:"previous_hash"`
	Nonce        uint64         `json:"nonce"`
	Hash         common.Hash    `json:"hash"`

	// MerkleRoot is an auxiliary integrity field, not a consensus input:
	// it lets a peer sanity-check a gossiped block's transaction list
	// before running full validation. It is never read by IsChainValid
	// and never contributes to Hash.
	MerkleRoot common.Hash `json:"merkle_root"`
}

// NewBlock constructs a block with Nonce=0 and computes its initial Hash
// and MerkleRoot. Callers then call Mine to find a nonce satisfying the
// difficulty target.
func NewBlock(index uint64, timestamp int64, txs []*Transaction, previousHash string) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
		PreviousHash: previousHash,
		Nonce:        0,
	}
	b.MerkleRoot = computeMerkleRoot(txHashes(b.Transactions))
	b.Hash = b.computeHash()
	return b
}

func txHashes(txs []*Transaction) []common.Hash {
	hashes := make([]common.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.Hash()
	}
	return hashes
}

// computeMerkleRoot folds leaf hashes pairwise with SHA-256, duplicating
// the final element at odd levels. Purely an auxiliary aid (see
// MerkleRoot) — this is never part of the block's canonical Hash.
func computeMerkleRoot(leaves []common.Hash) common.Hash {
	if len(leaves) == 0 {
		return common.Hash{}
	}
	level := leaves
	for len(level) > 1 {
		var next []common.Hash
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			var buf [2 * common.HashLength]byte
			copy(buf[:common.HashLength], left[:])
			copy(buf[common.HashLength:], right[:])
			next = append(next, sha256.Sum256(buf[:]))
		}
		level = next
	}
	return level[0]
}

// txBytes is the deterministic canonical encoding of the transaction list
// that feeds the block's Hash: the concatenation of every transaction's
// own signing bytes, each terminated by a newline so an empty list and a
// list with one empty-looking transaction can never collide.
func txBytes(txs []*Transaction) []byte {
	var buf []byte
	for _, tx := range txs {
		buf = append(buf, tx.signingBytes()...)
		buf = append(buf, '\n')
	}
	return buf
}

func (b *Block) computeHash() common.Hash {
	s := strconv.FormatUint(b.Index, 10) +
		strconv.FormatInt(b.Timestamp, 10) +
		string(txBytes(b.Transactions)) +
		b.PreviousHash +
		strconv.FormatUint(b.Nonce, 10)
	return sha256.Sum256([]byte(s))
}

// Recompute implements consensus.Sealable: it refreshes Hash from the
// block's current field values (used after Nonce changes during sealing).
func (b *Block) Recompute() common.Hash {
	b.Hash = b.computeHash()
	return b.Hash
}

// SetNonce implements consensus.Sealable.
func (b *Block) SetNonce(n uint64) {
	b.Nonce = n
}

// VerifyHash reports whether b.Hash matches the hash recomputed from b's
// current fields — the "hash == H(block)" invariant.
func (b *Block) VerifyHash() bool {
	return b.Hash == b.computeHash()
}

// Mine raises Nonce monotonically starting from 0 (any earlier Nonce is
// overwritten), recomputing Hash each step, until Hash has `difficulty`
// leading ASCII '0' hex characters, or ctx is cancelled. Passing context.Background() recovers
// the spec's synchronous, uncancellable mining semantics.
func (b *Block) Mine(ctx context.Context, difficulty int) error {
	return consensus.Seal(ctx, b, difficulty)
}

// MineSync is a context-free convenience wrapper over Mine, for tests and
// callers that want the spec's plain synchronous sealing.
func (b *Block) MineSync(difficulty int) {
	_ = b.Mine(context.Background(), difficulty)
}

// TotalFees sums the Fee field across tx[1:] (the non-coinbase entries).
func (b *Block) TotalFees() uint64 {
	if len(b.Transactions) == 0 {
		return 0
	}
	var total uint64
	for _, tx := range b.Transactions[1:] {
		total += tx.Fee
	}
	return total
}

func (b *Block) String() string {
	return fmt.Sprintf("block{index=%d hash=%s prev=%s nonce=%d txs=%d}",
		b.Index, b.Hash.Hex(), b.PreviousHash, b.Nonce, len(b.Transactions))
}
