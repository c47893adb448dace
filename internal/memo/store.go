// Package memo implements the content-addressed memoization cache for
// model predictions. Keys are derived from call arguments, values are
// serialized results, and the backing store is swappable: a transient
// in-memory table before training, a persistent directory-backed store
// afterwards.
package memo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store is one cache backend. At most one value is held per key.
type Store interface {
	Get(key Key) ([]byte, bool, error)
	Set(key Key, value []byte) error
	// Clear drops every entry from the store.
	Clear() error
	Close() error
	// Location is the backing directory, or "" for in-memory stores.
	Location() string
}

// Open builds a store of the given kind. Persistent kinds are rooted at
// dir, which is created if missing.
func Open(kind, dir string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindBadger:
		return openBadgerStore(dir)
	case KindSQLite:
		return openSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", kind)
	}
}

// Supported cache backend kinds.
const (
	KindMemory = "memory"
	KindBadger = "badger"
	KindSQLite = "sqlite"
)

// ValidKind reports whether kind names a known backend.
func ValidKind(kind string) bool {
	switch kind {
	case "", KindMemory, KindBadger, KindSQLite:
		return true
	}
	return false
}

// GenerationDir is the storage location of one cache generation under the
// cache root.
func GenerationDir(root, generation string) string {
	return filepath.Join(root, "gen-"+generation)
}

// RemoveOrphans deletes generation directories under root that are not in
// keep. Re-training allocates a fresh generation and leaves the previous
// one on disk; this is the optional reclamation path.
func RemoveOrphans(root string, keep ...string) error {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan cache root: %w", err)
	}

	kept := make(map[string]bool, len(keep))
	for _, gen := range keep {
		kept[gen] = true
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, "gen-") {
			continue
		}
		if kept[strings.TrimPrefix(name, "gen-")] {
			continue
		}
		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return fmt.Errorf("remove orphaned generation %s: %w", name, err)
		}
	}
	return nil
}
