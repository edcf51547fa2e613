package consensus

import (
	"context"
	"fmt"

	"github.com/tokinet/tokid/common"
)

// Sealable is anything that can be proof-of-work sealed: a nonce counter
// plus a way to recompute its content hash after the nonce changes.
// core/types.Block implements this.
type Sealable interface {
	SetNonce(n uint64)
	Recompute() common.Hash
}

// Seal sets h's nonce to 0 and raises it monotonically from there,
// recomputing its hash each step, until the hash has `difficulty` leading
// ASCII '0' hex characters, or ctx is cancelled. A nonce already set on h
// is overwritten, not continued from. This is the single shared
// implementation of the mining loop: core/types.Block.Mine is a thin
// wrapper over it, and the chain engine seals through Block.Mine, so
// cancelling ctx stops a seal without touching engine state.
func Seal(ctx context.Context, h Sealable, difficulty int) error {
	var nonce uint64
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("consensus: sealing cancelled: %w", ctx.Err())
		default:
		}
		h.SetNonce(nonce)
		hash := h.Recompute()
		if hash.HasPrefixZeros(difficulty) {
			return nil
		}
		nonce++
	}
}
