// Package provenance builds the per-request reproducibility hash-tree and
// the canonical hashing primitives the rest of the system shares.
package provenance

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// HashContent returns the first 12 hex characters of the SHA-256 digest of s.
// This prefix length is a wire contract shared with the client.
func HashContent(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// HashObject hashes an arbitrary value by canonicalizing it first: the value
// is round-tripped through JSON and every object level is re-serialized with
// sorted keys. Two values that are deep-equal up to key order always hash
// identically. Canonicalization must not depend on struct field order.
func HashObject(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	var b strings.Builder
	if err := writeCanonical(&b, decoded); err != nil {
		return "", err
	}
	return HashContent(b.String()), nil
}

// writeCanonical serializes decoded JSON with recursively sorted object keys.
func writeCanonical(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kj, err := json.Marshal(k)
			if err != nil {
				return err
			}
			b.Write(kj)
			b.WriteByte(':')
			if err := writeCanonical(b, t[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
		return nil
	case []any:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
		return nil
	default:
		j, err := json.Marshal(t)
		if err != nil {
			return err
		}
		b.Write(j)
		return nil
	}
}

// StalenessKey computes the client/server staleness key "h_<hex>" over the
// given payload parts. Parts are sorted, joined with "|", and run through a
// 32-bit signed rolling hash (h = h*31 + code over UTF-16 code units, which
// for our ASCII payloads is the byte value). The client computes the same
// key in JavaScript; the two must be byte-identical.
func StalenessKey(parts []string) string {
	sorted := make([]string, len(parts))
	copy(sorted, parts)
	sort.Strings(sorted)
	payload := strings.Join(sorted, "|")

	var h int32
	for _, r := range payload {
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("h_%x", h)
}
