package memo

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// Key is a content-derived cache key: the hex SHA-256 of a canonical
// encoding of the model identity, the memoized method name, and every
// named argument value.
type Key string

// Arg is one named argument of a memoized call.
type Arg struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type keyEnvelope struct {
	Model  string `json:"model"`
	Method string `json:"method"`
	Args   []Arg  `json:"args"`
}

// DeriveKey builds the cache key for a memoized call. Arguments are sorted
// by name before encoding, so the key is independent of the order in which
// named arguments were supplied but sensitive to every value. The encoding
// is deterministic across process restarts.
func DeriveKey(model, method string, args ...Arg) (Key, error) {
	sorted := make([]Arg, len(args))
	copy(sorted, args)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	payload, err := json.Marshal(keyEnvelope{Model: model, Method: method, Args: sorted})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	sum := sha256.Sum256(payload)
	return Key(hex.EncodeToString(sum[:])), nil
}
