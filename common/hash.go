package common

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// HashLength is the byte length of a content hash (SHA-256 digest).
const HashLength = 32

// Hash is a SHA-256 digest, used for both transaction and block hashes.
type Hash [HashLength]byte

// Hex returns the 0x-prefixed lowercase hex encoding of h.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// HasPrefixZeros reports whether h's hex representation (sans the 0x
// prefix) begins with n ASCII '0' characters — the proof-of-work
// condition shared by block sealing and difficulty verification.
func (h Hash) HasPrefixZeros(n int) bool {
	if n <= 0 {
		return true
	}
	hexStr := hex.EncodeToString(h[:])
	if n > len(hexStr) {
		return false
	}
	for i := 0; i < n; i++ {
		if hexStr[i] != '0' {
			return false
		}
	}
	return true
}

// ParseHash decodes a 0x-prefixed (or bare) hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	s = trimHexPrefix(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("common: invalid hash hex: %w", err)
	}
	if len(b) != HashLength {
		return h, fmt.Errorf("common: invalid hash length: have %d want %d", len(b), HashLength)
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Hex())
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
