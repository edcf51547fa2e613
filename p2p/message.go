// Package p2p is the gossip transport: libp2p host and pubsub wiring for
// the four message variants the chain engine and mempool exchange with
// peers.
package p2p

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tokinet/tokid/core/types"
)

// Message type discriminants carried in Envelope.Type.
const (
	TypeNewTransaction = "tx"
	TypeNewBlock       = "block"
	TypeRequestChain   = "request_chain"
	TypeChainResponse  = "chain_response"
)

// Envelope is the outer frame every gossip payload travels in. Data holds
// the type-specific payload, deferred decoding until Type is known. ID is
// a random per-message token set by encode; Decode does not return it and
// nothing in this package logs it.
type Envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewTransactionMsg is broadcast on admission of a transaction.
type NewTransactionMsg struct {
	Tx *types.Transaction `json:"tx"`
}

// NewBlockMsg is broadcast on a successful mine.
type NewBlockMsg struct {
	Block *types.Block `json:"block"`
}

// RequestChainMsg asks a peer for a full chain snapshot. It carries no
// fields; its presence on the wire is the whole request.
type RequestChainMsg struct{}

// ChainResponseMsg delivers a chain snapshot, consumed via the chain
// engine's TryReplaceChain.
type ChainResponseMsg struct {
	Blocks []*types.Block `json:"blocks"`
}

// EncodeTransaction wraps tx in its envelope, ready to publish on the
// transactions topic.
func EncodeTransaction(tx *types.Transaction) ([]byte, error) {
	return encode(TypeNewTransaction, NewTransactionMsg{Tx: tx})
}

// EncodeBlock wraps b in its envelope, ready to publish on the blocks
// topic.
func EncodeBlock(b *types.Block) ([]byte, error) {
	return encode(TypeNewBlock, NewBlockMsg{Block: b})
}

// EncodeRequestChain wraps an empty chain request.
func EncodeRequestChain() ([]byte, error) {
	return encode(TypeRequestChain, RequestChainMsg{})
}

// EncodeChainResponse wraps a chain snapshot.
func EncodeChainResponse(blocks []*types.Block) ([]byte, error) {
	return encode(TypeChainResponse, ChainResponseMsg{Blocks: blocks})
}

func encode(typ string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("p2p: marshal %s payload: %w", typ, err)
	}
	env := Envelope{ID: uuid.NewString(), Type: typ, Data: data}
	return json.Marshal(env)
}

// Decode parses a raw gossip frame into its envelope and type-specific
// payload. Malformed frames return an error; the caller (Node.dispatch) treats
// any error here as a dropped, not propagated, message — matching the
// "malformed payloads are dropped silently" contract.
func Decode(raw []byte) (string, any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", nil, fmt.Errorf("p2p: malformed envelope: %w", err)
	}
	switch env.Type {
	case TypeNewTransaction:
		var m NewTransactionMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return env.Type, nil, fmt.Errorf("p2p: malformed tx payload: %w", err)
		}
		return env.Type, m, nil
	case TypeNewBlock:
		var m NewBlockMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return env.Type, nil, fmt.Errorf("p2p: malformed block payload: %w", err)
		}
		return env.Type, m, nil
	case TypeRequestChain:
		return env.Type, RequestChainMsg{}, nil
	case TypeChainResponse:
		var m ChainResponseMsg
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return env.Type, nil, fmt.Errorf("p2p: malformed chain response payload: %w", err)
		}
		return env.Type, m, nil
	default:
		return env.Type, nil, fmt.Errorf("p2p: unknown envelope type %q", env.Type)
	}
}
