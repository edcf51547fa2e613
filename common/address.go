// Package common defines the fixed-width primitives shared across the
// tokid packages: addresses (Ed25519 public keys) and content hashes
// (SHA-256 digests), plus their hex wire encoding.
package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AddressLength is the byte length of an address: an Ed25519 public key.
const AddressLength = 32

// Address is an account identifier: the raw bytes of an Ed25519 public key.
// The zero value is the reserved Coinbase sentinel (see Coinbase below).
type Address [AddressLength]byte

// Coinbase is the sentinel address denoting issuance of new coin supply.
// It is never a valid sender in a user-submitted transaction.
var Coinbase = Address{}

// IsCoinbase reports whether a equals the reserved Coinbase sentinel.
func (a Address) IsCoinbase() bool {
	return a == Coinbase
}

// BytesToAddress keeps the last AddressLength bytes of b, left-padding
// with zeros when b is shorter, and returns them as an Address. Used for test
// fixtures and for decoding keys of known length.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// Hex returns the 0x-prefixed lowercase hex encoding of a.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

// ParseAddress decodes a 0x-prefixed (or bare) hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = trimHexPrefix(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("common: invalid address hex: %w", err)
	}
	if len(b) != AddressLength {
		return a, fmt.Errorf("common: invalid address length: have %d want %d", len(b), AddressLength)
	}
	copy(a[:], b)
	return a, nil
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

// MarshalJSON implements json.Marshaler, encoding the address as hex so
// gossip payloads stay a self-describing, human-inspectable wire format.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
