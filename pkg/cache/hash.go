package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 of data. Manifests, request bodies
// and key components are all identified this way.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "prefix:" + Hash(json(parts)). Parts must be
// JSON-encodable; struct fields are encoded in declaration order, so the
// key is stable across runs.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		panic("cache: unhashable key parts: " + err.Error())
	}
	return prefix + ":" + Hash(data)
}
