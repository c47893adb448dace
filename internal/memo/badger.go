package memo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// BadgerDB holds an exclusive lock on its directory, so in-process models
// that were reloaded from the same serialized file and therefore point at
// the same location must share one handle. The registry reference-counts
// open databases per absolute directory.
var badgerRegistry = struct {
	mu   sync.Mutex
	open map[string]*sharedBadger
}{open: make(map[string]*sharedBadger)}

type sharedBadger struct {
	db   *badger.DB
	dir  string
	refs int
}

// BadgerStore is the default persistent backend: a directory-backed
// key-value store that survives process exit.
type BadgerStore struct {
	shared *sharedBadger
	closed bool
	mu     sync.Mutex
}

func openBadgerStore(dir string) (*BadgerStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve cache dir: %w", err)
	}

	badgerRegistry.mu.Lock()
	defer badgerRegistry.mu.Unlock()

	if shared, ok := badgerRegistry.open[abs]; ok {
		shared.refs++
		return &BadgerStore{shared: shared}, nil
	}

	opts := badger.DefaultOptions(abs).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %s: %w", abs, err)
	}
	shared := &sharedBadger{db: db, dir: abs, refs: 1}
	badgerRegistry.open[abs] = shared
	return &BadgerStore{shared: shared}, nil
}

func (s *BadgerStore) Get(key Key) ([]byte, bool, error) {
	var value []byte
	err := s.shared.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return value, true, nil
}

func (s *BadgerStore) Set(key Key, value []byte) error {
	err := s.shared.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

func (s *BadgerStore) Clear() error {
	if err := s.shared.db.DropAll(); err != nil {
		return fmt.Errorf("badger clear: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	badgerRegistry.mu.Lock()
	defer badgerRegistry.mu.Unlock()

	s.shared.refs--
	if s.shared.refs > 0 {
		return nil
	}
	delete(badgerRegistry.open, s.shared.dir)
	return s.shared.db.Close()
}

func (s *BadgerStore) Location() string { return s.shared.dir }
