package memo

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/usr-ein/origami/internal/metrics"
)

// Cache memoizes an expensive compute function behind content-derived
// keys. The backing store is opened lazily, so a persistent generation
// touches disk only on the first lookup or write.
type Cache struct {
	kind       string
	dir        string
	generation string
	store      Store
	log        zerolog.Logger
}

// NewTransient returns the cache a model starts with: purely in-memory,
// no storage location, discarded with the model.
func NewTransient(log zerolog.Logger) *Cache {
	return &Cache{kind: KindMemory, store: NewMemoryStore(), log: log}
}

// NewPersistent returns a cache bound to one generation directory. The
// store is not opened until first use.
func NewPersistent(kind, dir, generation string, log zerolog.Logger) (*Cache, error) {
	if !ValidKind(kind) {
		return nil, fmt.Errorf("unsupported cache backend: %s", kind)
	}
	return &Cache{kind: kind, dir: dir, generation: generation, log: log}, nil
}

// Generation identifies the cache epoch; it doubles as the model identity
// mixed into every derived key.
func (c *Cache) Generation() string { return c.generation }

// Location is the backing directory, or "" for transient caches.
func (c *Cache) Location() string { return c.dir }

func (c *Cache) ensure() (Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, err := Open(c.kind, c.dir)
	if err != nil {
		return nil, err
	}
	c.store = store
	c.log.Debug().Str("backend", c.kind).Str("dir", c.dir).Msg("cache store opened")
	return store, nil
}

// GetOrCompute returns the stored value for key if present; otherwise it
// invokes compute, stores the result, and returns it. The boolean reports
// whether the value was a cache hit. A failed compute stores nothing.
func (c *Cache) GetOrCompute(key Key, compute func() ([]byte, error)) ([]byte, bool, error) {
	store, err := c.ensure()
	if err != nil {
		return nil, false, err
	}

	if value, ok, err := store.Get(key); err != nil {
		return nil, false, err
	} else if ok {
		metrics.CacheHits.Inc()
		c.log.Debug().Str("key", string(key)).Msg("cache hit")
		return value, true, nil
	}

	metrics.CacheMisses.Inc()
	value, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := store.Set(key, value); err != nil {
		return nil, false, err
	}
	metrics.CacheStores.Inc()
	c.log.Debug().Str("key", string(key)).Int("bytes", len(value)).Msg("cache store")
	return value, false, nil
}

// Clear drops every entry, including entries persisted by an earlier
// process that the lazy open has not touched yet. With softly=false the
// backing directory is also removed from storage; this is the only
// explicit eviction path.
func (c *Cache) Clear(softly bool) error {
	metrics.CacheClears.Inc()

	if softly {
		if c.store == nil && !c.persisted() {
			return nil
		}
		store, err := c.ensure()
		if err != nil {
			return err
		}
		return store.Clear()
	}

	if c.store != nil {
		if err := c.store.Close(); err != nil {
			return err
		}
		c.store = nil
	}
	if c.dir != "" {
		if err := os.RemoveAll(c.dir); err != nil {
			return fmt.Errorf("remove cache dir: %w", err)
		}
		c.log.Debug().Str("dir", c.dir).Msg("cache dir removed")
	}
	return nil
}

// persisted reports whether the generation directory already exists, so a
// soft clear does not create a store just to empty it.
func (c *Cache) persisted() bool {
	if c.dir == "" {
		return false
	}
	_, err := os.Stat(c.dir)
	return err == nil
}

// Close releases the backing store without touching stored entries.
func (c *Cache) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}
