// Package txpool implements the mempool: the FIFO holding area for
// transactions that have passed stateless and state-projected admission
// checks but have not yet been sealed into a block.
package txpool

import (
	"fmt"
	"sync"

	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/core/state"
	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/internal/metrics"
	"github.com/tokinet/tokid/internal/tlog"
)

// VerifyFunc checks a signature against a message and address; it is
// injected so this package never imports the signing implementation.
type VerifyFunc func(addr common.Address, msg, sig []byte) bool

// Pool is a FIFO-ordered set of admitted, not-yet-mined transactions,
// keyed by hash so a resubmission is a no-op rather than a duplicate.
type Pool struct {
	mu     sync.Mutex
	verify VerifyFunc
	byHash map[common.Hash]*types.Transaction
	order  []common.Hash
}

// New builds an empty pool. verify is used to check every incoming
// non-coinbase transaction's signature before admission.
func New(verify VerifyFunc) *Pool {
	return &Pool{
		verify: verify,
		byHash: make(map[common.Hash]*types.Transaction),
		order:  make([]common.Hash, 0),
	}
}

// Add admits tx if it is stateless-valid and, projected against base plus
// every transaction already queued (from any sender), state-valid. A
// transaction already present is a no-op, not a duplicate admission.
func (p *Pool) Add(base state.State, tx *types.Transaction) error {
	if !tx.IsValid(p.verify) {
		metrics.TxRejectedTotal.Inc()
		return fmt.Errorf("txpool: transaction %s fails stateless validation", tx.Hash().Hex())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h := tx.Hash()
	if _, exists := p.byHash[h]; exists {
		return nil
	}

	projected := base.Clone()
	for _, queued := range p.order {
		state.ApplyTransaction(projected, p.byHash[queued])
	}
	if !state.IsTxValidAgainstState(projected, tx) {
		metrics.TxRejectedTotal.Inc()
		return fmt.Errorf("txpool: transaction %s fails projected-balance validation", h.Hex())
	}

	p.byHash[h] = tx
	p.order = append(p.order, h)
	metrics.TxAdmittedTotal.Inc()
	metrics.MempoolSizeGauge.Set(float64(len(p.order)))
	tlog.Debug("tx admitted", "hash", h.Hex(), "from", tx.From.Hex(), "to", tx.To.Hex())
	return nil
}

// Contains reports whether a transaction with the given hash is queued.
func (p *Pool) Contains(h common.Hash) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.byHash[h]
	return ok
}

// Drain returns every queued transaction in FIFO order and empties the
// pool — the chain engine calls this once per mined block, staging the
// returned slice into the block candidate before sealing.
func (p *Pool) Drain() []*types.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*types.Transaction, len(p.order))
	for i, h := range p.order {
		out[i] = p.byHash[h]
	}
	p.byHash = make(map[common.Hash]*types.Transaction)
	p.order = p.order[:0]
	metrics.MempoolSizeGauge.Set(0)
	return out
}

// Requeue puts transactions back at the front of the pool, in their
// original relative order — used when a staged candidate block loses a
// mining race to a gossiped block and its transactions must return to
// circulation instead of being dropped.
func (p *Pool) Requeue(txs []*types.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	restored := make([]common.Hash, 0, len(txs)+len(p.order))
	for _, tx := range txs {
		h := tx.Hash()
		if _, exists := p.byHash[h]; exists {
			continue
		}
		p.byHash[h] = tx
		restored = append(restored, h)
	}
	p.order = append(restored, p.order...)
	metrics.MempoolSizeGauge.Set(float64(len(p.order)))
}

// Len reports the number of queued transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.order)
}
