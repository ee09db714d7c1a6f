package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON hashes the JSON encoding of v. Map keys are encoded sorted, so
// equal maps hash equally.
func HashJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return Hash(data), nil
}

// hashKey builds "<kind>:<sha256 of parts>".
func hashKey(kind string, parts ...any) string {
	h, _ := HashJSON(parts) // key inputs are plain structs and strings
	return kind + ":" + h
}

// KeyType reports which kind of entry key names, or "other".
func KeyType(key string) string {
	switch {
	case strings.Contains(key, PrefixSnapshot+":"):
		return PrefixSnapshot
	case strings.Contains(key, PrefixArtifact+":"):
		return PrefixArtifact
	}
	return "other"
}
