package main

import (
	"context"

	"github.com/tokinet/tokid/core/chain"
	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/internal/tlog"
	"github.com/tokinet/tokid/p2p"
)

// engineAdapter implements p2p.Handler over a chain.Engine. It does not
// re-publish transactions or blocks received from peers; it publishes only
// locally originated transactions and locally mined blocks.
type engineAdapter struct {
	engine *chain.Engine
	node   *p2p.Node // set after p2p.New returns; nil during its own construction
}

func (a *engineAdapter) OnTransaction(tx *types.Transaction) {
	if err := a.engine.AddTransaction(tx); err != nil {
		tlog.Debug("rejected gossiped transaction", "hash", tx.Hash().Hex(), "err", err)
		return
	}
	tlog.Info("admitted gossiped transaction", "hash", tx.Hash().Hex())
}

func (a *engineAdapter) OnBlock(b *types.Block) {
	if err := a.engine.HandleIncomingBlock(b); err != nil {
		tlog.Debug("rejected gossiped block", "index", b.Index, "hash", b.Hash.Hex(), "err", err)
		return
	}
	tlog.Info("adopted gossiped block", "index", b.Index, "hash", b.Hash.Hex())
}

func (a *engineAdapter) OnRequestChain() []*types.Block {
	return a.engine.Chain()
}

func (a *engineAdapter) OnChainResponse(blocks []*types.Block) {
	if err := a.engine.TryReplaceChain(blocks); err != nil {
		tlog.Debug("chain response did not replace local chain", "err", err)
	}
}

// publishTransaction broadcasts tx after local admission, per spec.md §6
// ("NewTransaction — broadcast on admission").
func (a *engineAdapter) publishTransaction(ctx context.Context, tx *types.Transaction) {
	if a.node == nil {
		return
	}
	if err := a.node.PublishTransaction(ctx, tx); err != nil {
		tlog.Debug("failed to publish transaction", "err", err)
	}
}

// publishBlock broadcasts b after a successful local mine.
func (a *engineAdapter) publishBlock(ctx context.Context, b *types.Block) {
	if a.node == nil {
		return
	}
	if err := a.node.PublishBlock(ctx, b); err != nil {
		tlog.Debug("failed to publish block", "err", err)
	}
}
