// Command tokid runs a single proof-of-work gossip blockchain node: the
// consensus engine, its mempool, and a libp2p transport, wired together
// and driven from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tokinet/tokid/common"
	"github.com/tokinet/tokid/core/chain"
	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/internal/tlog"
	"github.com/tokinet/tokid/p2p"
	"github.com/tokinet/tokid/walletkey"
)

var (
	listenFlag = &cli.StringFlag{
		Name:  "listen",
		Usage: "libp2p listen multiaddress",
		Value: "/ip4/0.0.0.0/tcp/0",
	}
	difficultyFlag = &cli.IntFlag{
		Name:  "difficulty",
		Usage: "initial proof-of-work difficulty (leading zero hex digits)",
		Value: 1,
	}
	mineFlag = &cli.BoolFlag{
		Name:  "mine",
		Usage: "start the background mining loop",
	}
	keyfileFlag = &cli.StringFlag{
		Name:  "keyfile",
		Usage: "path to a persisted wallet keyfile; generated fresh if absent",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "log level: trace, debug, info, warn, error",
		Value: "info",
	}
	sendToFlag = &cli.StringFlag{
		Name:  "send-to",
		Usage: "hex address to send a one-shot signed transaction to at startup",
	}
	sendAmountFlag = &cli.Uint64Flag{
		Name:  "send-amount",
		Usage: "amount to send with --send-to",
	}
	sendFeeFlag = &cli.Uint64Flag{
		Name:  "send-fee",
		Usage: "fee to attach to the --send-to transaction",
	}
)

func main() {
	app := &cli.App{
		Name:      "tokid",
		Usage:     "a minimal proof-of-work gossip blockchain node",
		ArgsUsage: "[peer-multiaddr]",
		Flags: []cli.Flag{
			listenFlag, difficultyFlag, mineFlag, keyfileFlag, verbosityFlag,
			sendToFlag, sendAmountFlag, sendFeeFlag,
		},
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tokid:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level, err := tlog.ParseLevel(c.String(verbosityFlag.Name))
	if err != nil {
		return err
	}
	tlog.SetDefault(tlog.New(level, os.Stderr))

	wallet, err := loadOrGenerateWallet(c.String(keyfileFlag.Name))
	if err != nil {
		return err
	}
	tlog.Info("wallet ready", "address", wallet.Address().Hex())

	engine := chain.NewEngine(walletkey.Verify, c.Int(difficultyFlag.Name))
	adapter := &engineAdapter{engine: engine}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	node, err := p2p.New(ctx, c.String(listenFlag.Name), adapter)
	if err != nil {
		return fmt.Errorf("tokid: start p2p node: %w", err)
	}
	adapter.node = node
	defer node.Close()
	for _, addr := range node.Addrs() {
		tlog.Info("listening", "addr", fmt.Sprintf("%s/p2p/%s", addr, node.ID()))
	}

	if peerAddr := c.Args().First(); peerAddr != "" {
		if err := node.Dial(ctx, peerAddr); err != nil {
			tlog.Warn("failed to dial peer", "addr", peerAddr, "err", err)
		} else if err := node.PublishRequestChain(ctx); err != nil {
			tlog.Warn("failed to request chain from peer", "err", err)
		}
	}

	if to := c.String(sendToFlag.Name); to != "" {
		if err := sendOneShot(ctx, engine, adapter, wallet, to, c.Uint64(sendAmountFlag.Name), c.Uint64(sendFeeFlag.Name)); err != nil {
			tlog.Warn("one-shot send failed", "err", err)
		}
	}

	if c.Bool(mineFlag.Name) {
		go mineLoop(ctx, engine, adapter, wallet.Address())
	}

	<-ctx.Done()
	tlog.Info("shutting down")
	return nil
}

// sendOneShot signs and admits a single transaction at startup, the CLI's
// only local transaction-origination path — a convenience for demos and
// tests, not a full RPC surface. A successfully admitted transaction is
// broadcast, per spec.md §6's "NewTransaction — broadcast on admission".
func sendOneShot(ctx context.Context, engine *chain.Engine, adapter *engineAdapter, wallet *walletkey.KeyPair, toHex string, amount, fee uint64) error {
	to, err := common.ParseAddress(toHex)
	if err != nil {
		return fmt.Errorf("tokid: parse --send-to address: %w", err)
	}
	tx := types.NewTransaction(wallet.Address(), to, amount, fee, 0)
	h := tx.Hash()
	tx.Signature = wallet.Sign(h[:])

	if err := engine.AddTransaction(tx); err != nil {
		return fmt.Errorf("tokid: admit one-shot transaction: %w", err)
	}
	tlog.Info("admitted one-shot transaction", "hash", h.Hex(), "to", to.Hex(), "amount", amount)
	adapter.publishTransaction(ctx, tx)
	return nil
}

func loadOrGenerateWallet(path string) (*walletkey.KeyPair, error) {
	if path == "" {
		return walletkey.GenerateKeyPair()
	}
	if _, err := os.Stat(path); err == nil {
		return walletkey.LoadFromFile(path)
	}
	wallet, err := walletkey.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	if err := wallet.SaveToFile(path); err != nil {
		return nil, fmt.Errorf("tokid: persist new keyfile: %w", err)
	}
	return wallet, nil
}

// mineLoop continuously mines pending transactions into blocks, publishing
// each to the network on success. It is the only place that decides
// mining is continuous background work rather than single-shot — the
// engine itself is agnostic, as SPEC_FULL.md requires.
func mineLoop(ctx context.Context, engine *chain.Engine, adapter *engineAdapter, miner common.Address) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := engine.MinePendingTransactions(ctx, miner)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			tlog.Debug("mining attempt did not produce a block", "err", err)
			time.Sleep(time.Second)
			continue
		}
		adapter.publishBlock(ctx, b)
	}
}
