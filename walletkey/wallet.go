// Package walletkey implements the wallet/keypair contract the consensus
// core consumes: Ed25519 keypairs, address derivation, and the sign/verify
// operations transactions are checked against. Addresses are the raw
// 32-byte Ed25519 public key, so an address uniquely determines its
// verification key — no address-to-key directory is needed.
package walletkey

import (
	"crypto/ed25519"
	cryptorand "crypto/rand"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/tokinet/tokid/common"
)

// SignatureLength is the byte length of an Ed25519 signature.
const SignatureLength = ed25519.SignatureSize

// KeyPair holds an Ed25519 private key and its derived address.
type KeyPair struct {
	priv ed25519.PrivateKey
	addr common.Address
}

// GenerateKeyPair creates a fresh random Ed25519 keypair.
func GenerateKeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(cryptorand.Reader)
	if err != nil {
		return nil, fmt.Errorf("walletkey: generate key: %w", err)
	}
	return &KeyPair{priv: priv, addr: common.BytesToAddress(pub)}, nil
}

// Address returns the address derived from the keypair's public key.
func (k *KeyPair) Address() common.Address {
	return k.addr
}

// Sign produces a detached Ed25519 signature over msg. The core calls this
// with a transaction's canonical hash (Transaction.Hash()).
func (k *KeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(k.priv, msg)
}

// Verify reports whether sig is a valid Ed25519 signature over msg under
// the public key encoded by addr.
func Verify(addr common.Address, msg, sig []byte) bool {
	if len(sig) != SignatureLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(addr[:]), msg, sig)
}

// SaveToFile persists the keypair's private key as hex to path, so a
// node's identity survives a restart. This is a convenience around the
// wallet contract only — it implies no chain-state persistence.
func (k *KeyPair) SaveToFile(path string) error {
	return os.WriteFile(path, []byte(hex.EncodeToString(k.priv)), 0o600)
}

// LoadFromFile reads a hex-encoded Ed25519 private key previously written
// by SaveToFile.
func LoadFromFile(path string) (*KeyPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("walletkey: read keyfile: %w", err)
	}
	raw, err := hex.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("walletkey: decode keyfile: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("walletkey: bad keyfile length: have %d want %d", len(raw), ed25519.PrivateKeySize)
	}
	priv := ed25519.PrivateKey(raw)
	pub := priv.Public().(ed25519.PublicKey)
	return &KeyPair{priv: priv, addr: common.BytesToAddress(pub)}, nil
}
