package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey names a pipeline entry: the stage ("layout", "artifact") followed
// by the SHA-256 of its JSON-encoded inputs.
func hashKey(stage string, inputs ...any) string {
	data, _ := json.Marshal(inputs)
	sum := sha256.Sum256(data)
	return stage + ":" + hex.EncodeToString(sum[:])
}

// Hash returns the hex SHA-256 of data. The runner uses it to key artifacts by
// the bytes of their layout.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the Hash of v's JSON encoding. A project fetched twice
// with the same nodes hashes the same, since node slices keep backend order.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}
