// Package chain implements the consensus engine: admission, mining, full
// validation, difficulty retargeting, and chain-replacement arbitration
// over the block/state/mempool primitives in the sibling packages.
package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/consensus"
	"github.com/tokinet/tokid/core/state"
	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/core/txpool"
	"github.com/tokinet/tokid/internal/metrics"
	"github.com/tokinet/tokid/internal/tlog"
)

// BlockReward is the fixed coinbase issuance per mined block.
const BlockReward = 50

// Engine owns the canonical chain, derived state, and mempool, and is the
// sole mutator of all three. AddTransaction and TryReplaceChain take mu for
// their full duration; MinePendingTransactions holds it except for the
// hashing loop, which runs outside the lock so admission and queries are
// not blocked for the duration of a mining attempt. HandleIncomingBlock
// copies the chain under mu, releases it, and then calls TryReplaceChain.
type Engine struct {
	mu sync.Mutex
	// genesisDifficulty is the immutable retarget seed: spec.md §4.4.4
	// requires that "no inputs other than block timestamps and the
	// initial difficulty" influence retargeting, so this value is fixed
	// at construction and never overwritten — difficulty is always
	// recomputed as consensus.Difficulty(timestamps, genesisDifficulty).
	genesisDifficulty int
	chain             []*types.Block
	state             state.State
	mempool           *txpool.Pool
	difficulty        int
	verify            txpool.VerifyFunc
}

// NewEngine builds an engine seeded with the fixed genesis block (index 0,
// no transactions, previous_hash "0") and the given initial difficulty.
func NewEngine(verify txpool.VerifyFunc, initialDifficulty int) *Engine {
	genesis := types.NewBlock(0, 0, nil, types.GenesisPreviousHash)
	e := &Engine{
		genesisDifficulty: initialDifficulty,
		chain:             []*types.Block{genesis},
		state:             state.New(),
		mempool:           txpool.New(verify),
		difficulty:        initialDifficulty,
		verify:            verify,
	}
	metrics.ChainHeightGauge.Set(0)
	metrics.DifficultyGauge.Set(float64(initialDifficulty))
	return e
}

// Height returns the index of the latest block.
func (e *Engine) Height() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain[len(e.chain)-1].Index
}

// LatestBlock returns the current chain tip.
func (e *Engine) LatestBlock() *types.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.chain[len(e.chain)-1]
}

// BalanceOf reports addr's confirmed balance.
func (e *Engine) BalanceOf(addr common.Address) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state[addr]
}

// MempoolLen reports the number of transactions awaiting admission into a
// block.
func (e *Engine) MempoolLen() int {
	return e.mempool.Len()
}

// Difficulty reports the engine's current proof-of-work difficulty.
func (e *Engine) Difficulty() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.difficulty
}

// Chain returns a copy of the full block slice, for gossip responses and
// validation of candidate chains.
func (e *Engine) Chain() []*types.Block {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*types.Block, len(e.chain))
	copy(out, e.chain)
	return out
}

// AddTransaction admits tx into the mempool iff it is cryptographically
// valid, not a coinbase (those are synthesized only by mining), and valid
// against the confirmed state projected through every transaction already
// queued. Rejections are reported as an error for diagnostics; callers
// that only need the spec's boolean admission result can check err == nil.
func (e *Engine) AddTransaction(tx *types.Transaction) error {
	if tx.IsCoinbase() {
		return fmt.Errorf("chain: coinbase transactions may only be synthesized by mining")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mempool.Add(e.state, tx)
}

// MinePendingTransactions drains the mempool into a new block credited to
// miner, seals it against the difficulty retargeted from the current chain
// (see retargetLocked), and appends it. Staging
// happens under the lock; the proof-of-work search itself runs outside it
// so the engine keeps serving reads and admissions while sealing runs.
// If the chain tip advances underneath a running seal, the candidate is
// discarded and its transactions are restored to the mempool rather than
// dropped.
func (e *Engine) MinePendingTransactions(ctx context.Context, miner common.Address) (*types.Block, error) {
	e.mu.Lock()
	tip := e.chain[len(e.chain)-1]
	drained := e.mempool.Drain()
	var totalFees uint64
	for _, tx := range drained {
		totalFees += tx.Fee
	}
	coinbase := types.NewTransaction(common.Coinbase, miner, BlockReward+totalFees, 0, 0)
	txs := append([]*types.Transaction{coinbase}, drained...)
	candidate := types.NewBlock(tip.Index+1, time.Now().Unix(), txs, tip.Hash.Hex())
	difficulty := e.retargetLocked()
	e.mu.Unlock()

	start := time.Now()
	err := candidate.Mine(ctx, difficulty)
	metrics.ObserveMiningDuration(start)
	if err != nil {
		e.mempool.Requeue(drained)
		return nil, fmt.Errorf("chain: sealing cancelled: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	currentTip := e.chain[len(e.chain)-1]
	if candidate.PreviousHash != currentTip.Hash.Hex() {
		e.mempool.Requeue(drained)
		return nil, fmt.Errorf("chain: tip advanced during sealing, candidate discarded")
	}

	for _, tx := range candidate.Transactions {
		state.ApplyTransaction(e.state, tx)
	}
	e.chain = append(e.chain, candidate)
	e.difficulty = difficulty
	metrics.ChainHeightGauge.Set(float64(candidate.Index))
	metrics.DifficultyGauge.Set(float64(difficulty))
	metrics.BlocksMinedTotal.Inc()
	tlog.Info("block mined", "index", candidate.Index, "hash", candidate.Hash.Hex(), "txs", len(candidate.Transactions), "difficulty", difficulty)
	return candidate, nil
}

// retargetLocked computes the next difficulty from the current chain's
// timestamps. Caller must hold mu.
func (e *Engine) retargetLocked() int {
	return consensus.Difficulty(timestamps(e.chain), e.genesisDifficulty)
}

func timestamps(chain []*types.Block) []int64 {
	ts := make([]int64, len(chain))
	for i, b := range chain {
		ts[i] = b.Timestamp
	}
	return ts
}

// IsChainValid re-derives state from an empty ledger while walking the
// engine's own chain from index 1, checking hash integrity, linkage,
// difficulty, and every transaction. It is also used, via isChainValid,
// to validate candidate chains offered by peers.
func (e *Engine) IsChainValid() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return isChainValid(e.chain, e.genesisDifficulty, e.verify)
}

func isChainValid(chain []*types.Block, initialDifficulty int, verify txpool.VerifyFunc) bool {
	if len(chain) == 0 {
		return false
	}
	s := state.New()
	for i := 1; i < len(chain); i++ {
		b := chain[i]
		p := chain[i-1]

		if !b.VerifyHash() {
			return false
		}
		if b.PreviousHash != p.Hash.Hex() {
			return false
		}

		// Only the prefix available at the time b would have been mined —
		// i.e. excluding b's own timestamp — may determine the expected
		// difficulty; MinePendingTransactions retargets from the same
		// prefix before staging a candidate (see retargetLocked).
		expected := consensus.Difficulty(timestamps(chain[:i]), initialDifficulty)
		if !b.Hash.HasPrefixZeros(expected) {
			return false
		}

		if len(b.Transactions) == 0 {
			return false
		}
		coinbase := b.Transactions[0]
		if !coinbase.IsCoinbase() || coinbase.Fee != 0 {
			return false
		}
		if coinbase.Amount != BlockReward+b.TotalFees() {
			return false
		}

		for _, tx := range b.Transactions {
			if !tx.IsValid(verify) {
				return false
			}
			if !state.IsTxValidAgainstState(s, tx) {
				return false
			}
			state.ApplyTransaction(s, tx)
		}
	}
	return true
}

// TryReplaceChain adopts candidate iff it is strictly longer than the
// current chain and passes full validation; ties favor the incumbent.
// Adoption rebuilds state from scratch and clears the mempool, since
// queued transactions may already be included or invalid against the new
// state.
func (e *Engine) TryReplaceChain(candidate []*types.Block) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(candidate) <= len(e.chain) {
		return fmt.Errorf("chain: candidate length %d does not exceed current length %d", len(candidate), len(e.chain))
	}
	if !isChainValid(candidate, e.genesisDifficulty, e.verify) {
		return fmt.Errorf("chain: candidate chain failed validation")
	}

	out := make([]*types.Block, len(candidate))
	copy(out, candidate)
	e.chain = out
	e.state = state.Rebuild(nonGenesis(out))
	e.mempool = txpool.New(e.verify)
	e.difficulty = consensus.Difficulty(timestamps(out), e.genesisDifficulty)
	metrics.ChainHeightGauge.Set(float64(e.chain[len(e.chain)-1].Index))
	metrics.DifficultyGauge.Set(float64(e.difficulty))
	metrics.MempoolSizeGauge.Set(0)
	metrics.ChainReplacedTotal.Inc()
	tlog.Info("chain replaced", "new_height", e.chain[len(e.chain)-1].Index)
	return nil
}

func nonGenesis(chain []*types.Block) []*types.Block {
	if len(chain) <= 1 {
		return nil
	}
	return chain[1:]
}

// HandleIncomingBlock appends a single peer-advertised block to a working
// copy of the current chain and attempts replacement. Like a chain
// response, it changes the chain only through TryReplaceChain.
func (e *Engine) HandleIncomingBlock(b *types.Block) error {
	e.mu.Lock()
	working := make([]*types.Block, len(e.chain), len(e.chain)+1)
	copy(working, e.chain)
	e.mu.Unlock()

	working = append(working, b)
	return e.TryReplaceChain(working)
}
