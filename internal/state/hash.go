package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ComputeHash returns a hex sha256 digest over a canonical serialization
// of the configuration document. encoding/json writes map keys in sorted
// order and no insignificant whitespace, so two documents differing only
// in key order or formatting hash identically, and any leaf change
// changes the digest.
func ComputeHash(doc map[string]any) string {
	data, err := json.Marshal(doc)
	if err != nil {
		// Configuration documents come from json/yaml decoding and are
		// always marshalable; a failure here means a programming error.
		panic("state: unmarshalable config document: " + err.Error())
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
