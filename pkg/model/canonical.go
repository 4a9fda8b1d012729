package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// CanonicalJSON renders v as JSON with map keys sorted, so that semantically
// equal values always produce byte-identical output. encoding/json already
// sorts map[string]any keys; canonicalize nested maps explicitly so the
// guarantee also holds for map[string]any values passed in loosely typed
// (e.g. decoded from arbitrary user-supplied seeds).
func CanonicalJSON(v any) ([]byte, error) {
	normalized := normalize(v)
	return json.Marshal(normalized)
}

// normalize walks a decoded JSON-like value and returns an equivalent value
// whose map keys will marshal in sorted order (already true for Go maps,
// this just ensures nested []any/map[string]any trees are recursively
// normalized rather than relying on incidental map iteration order).
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = normalize(val[k])
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalize(item)
		}
		return out
	default:
		return val
	}
}

// SeedHash computes the first 16 hex characters of SHA-256 over the
// canonical-JSON encoding of seed, per the idempotency key used by the
// orchestrator to dedupe prepare_workflow calls.
func SeedHash(seed map[string]any) (string, error) {
	encoded, err := CanonicalJSON(seed)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])[:16], nil
}
