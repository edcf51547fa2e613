package p2p

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/libp2p/go-libp2p"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/multiformats/go-multiaddr"
	"golang.org/x/crypto/blake2b"

	"github.com/tokinet/tokid/core/types"
	"github.com/tokinet/tokid/internal/tlog"
)

const (
	transactionsTopic = "toki-transactions"
	blocksTopic       = "toki-blocks"
)

// Handler is the set of callbacks a Node invokes as peer messages arrive.
// The chain engine and mempool are wired in through this interface so p2p
// never imports core/chain directly.
type Handler interface {
	OnTransaction(tx *types.Transaction)
	OnBlock(b *types.Block)
	OnRequestChain() []*types.Block
	OnChainResponse(blocks []*types.Block)
}

// Node owns a libp2p host and the two gossipsub topics the network adapter
// speaks over.
type Node struct {
	host    host.Host
	pubsub  *pubsub.PubSub
	txTopic *pubsub.Topic
	blTopic *pubsub.Topic
	handler Handler
}

// New starts a libp2p host listening on listenAddr (e.g.
// "/ip4/0.0.0.0/tcp/0") and joins both gossip topics. The host's Noise
// transport authenticates peers; no application-level handshake is added
// on top of it.
func New(ctx context.Context, listenAddr string, h Handler) (*Node, error) {
	host, err := libp2p.New(libp2p.ListenAddrStrings(listenAddr))
	if err != nil {
		return nil, fmt.Errorf("p2p: create host: %w", err)
	}

	ps, err := pubsub.NewGossipSub(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("p2p: create gossipsub: %w", err)
	}

	txTopic, err := ps.Join(transactionsTopic)
	if err != nil {
		return nil, fmt.Errorf("p2p: join %s: %w", transactionsTopic, err)
	}
	blTopic, err := ps.Join(blocksTopic)
	if err != nil {
		return nil, fmt.Errorf("p2p: join %s: %w", blocksTopic, err)
	}

	n := &Node{host: host, pubsub: ps, txTopic: txTopic, blTopic: blTopic, handler: h}

	txSub, err := txTopic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("p2p: subscribe %s: %w", transactionsTopic, err)
	}
	blSub, err := blTopic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("p2p: subscribe %s: %w", blocksTopic, err)
	}

	go n.readLoop(ctx, txSub)
	go n.readLoop(ctx, blSub)

	tlog.Info("p2p node started", "id", host.ID().String(), "fingerprint", fingerprint(host.ID()), "listen", listenAddr)
	return n, nil
}

// ID returns the host's peer ID.
func (n *Node) ID() string { return n.host.ID().String() }

// fingerprint condenses a peer ID down to a short blake2b digest for log
// lines, so two peers never become visually indistinguishable the way
// their full base58 IDs' shared prefixes can.
func fingerprint(id peer.ID) string {
	sum := blake2b.Sum256([]byte(id))
	return hex.EncodeToString(sum[:4])
}

// Addrs returns the host's listen multiaddresses.
func (n *Node) Addrs() []multiaddr.Multiaddr { return n.host.Addrs() }

// Dial connects to a peer advertised at addr (a full /p2p/ multiaddr), the
// process surface's single positional startup argument.
func (n *Node) Dial(ctx context.Context, addr string) error {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return fmt.Errorf("p2p: parse peer address %q: %w", addr, err)
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return fmt.Errorf("p2p: resolve peer info from %q: %w", addr, err)
	}
	if err := n.host.Connect(ctx, *info); err != nil {
		return fmt.Errorf("p2p: dial %s: %w", info.ID, err)
	}
	tlog.Info("dialed peer", "peer", info.ID.String(), "fingerprint", fingerprint(info.ID))
	return nil
}

func (n *Node) readLoop(ctx context.Context, sub *pubsub.Subscription) {
	for {
		msg, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			tlog.Debug("p2p: subscription read failed", "err", err)
			continue
		}
		if msg.ReceivedFrom == n.host.ID() {
			continue // gossipsub delivers our own publishes to our subscriptions; skip them
		}
		n.dispatch(msg.Data)
	}
}

// dispatch decodes a raw frame and routes it to the handler. A malformed
// frame is logged at Debug and dropped — never propagated as an error
// that could be used to fingerprint or penalize the sending peer.
func (n *Node) dispatch(raw []byte) {
	typ, payload, err := Decode(raw)
	if err != nil {
		tlog.Debug("p2p: dropping malformed message", "type", typ, "err", err)
		return
	}
	switch m := payload.(type) {
	case NewTransactionMsg:
		n.handler.OnTransaction(m.Tx)
	case NewBlockMsg:
		n.handler.OnBlock(m.Block)
	case RequestChainMsg:
		blocks := n.handler.OnRequestChain()
		if err := n.PublishChainResponse(context.Background(), blocks); err != nil {
			tlog.Debug("p2p: failed to publish chain response", "err", err)
		}
	case ChainResponseMsg:
		n.handler.OnChainResponse(m.Blocks)
	}
}

// PublishTransaction broadcasts tx on the transactions topic, called on
// admission.
func (n *Node) PublishTransaction(ctx context.Context, tx *types.Transaction) error {
	data, err := EncodeTransaction(tx)
	if err != nil {
		return err
	}
	return n.txTopic.Publish(ctx, data)
}

// PublishBlock broadcasts b on the blocks topic, called on a successful
// mine.
func (n *Node) PublishBlock(ctx context.Context, b *types.Block) error {
	data, err := EncodeBlock(b)
	if err != nil {
		return err
	}
	return n.blTopic.Publish(ctx, data)
}

// PublishRequestChain asks peers for a full chain snapshot.
func (n *Node) PublishRequestChain(ctx context.Context) error {
	data, err := EncodeRequestChain()
	if err != nil {
		return err
	}
	return n.blTopic.Publish(ctx, data)
}

// PublishChainResponse delivers a chain snapshot in response to a peer's
// request.
func (n *Node) PublishChainResponse(ctx context.Context, blocks []*types.Block) error {
	data, err := EncodeChainResponse(blocks)
	if err != nil {
		return err
	}
	return n.blTopic.Publish(ctx, data)
}

// Close shuts the host down, releasing its listeners and connections.
func (n *Node) Close() error {
	return n.host.Close()
}
