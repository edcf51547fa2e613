package common

import (
	"encoding/hex"
	"encoding/json"
)

// HexBytes is a byte slice that marshals to JSON as a hex string instead
// of the default base64, so gossip payloads stay human-inspectable.
type HexBytes []byte

func (b HexBytes) MarshalJSON() ([]byte, error) {
	if b == nil {
		return json.Marshal("")
	}
	return json.Marshal("0x" + hex.EncodeToString(b))
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*b = nil
		return nil
	}
	decoded, err := hex.DecodeString(trimHexPrefix(s))
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
