// Package badger persists the indexed chain state in a badger key-value store.
// Every block is applied or reverted inside a single read-write transaction.
package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// Store owns the badger database.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	mu          sync.Mutex
	lastVersion uint64
}

// Open opens the database at path. An empty path opens an in-memory database.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	logger.Info("badger store opened", zap.String("path", path), zap.Bool("in_memory", path == ""))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger: %w", err)
	}
	return nil
}

// Begin opens a read-write transaction. The caller must Commit or Discard it.
func (s *Store) Begin(_ context.Context) *Tx {
	return &Tx{
		txn:     s.db.NewTransaction(true),
		store:   s,
		changes: newChangeLog(),
	}
}

// State reads the committed application state.
func (s *Store) State(_ context.Context) (*model.AppState, error) {
	var state model.AppState
	err := s.db.View(func(txn *badger.Txn) error {
		return get(txn, keyState, &state)
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Export returns every mirrored entity as a single change set.
func (s *Store) Export(_ context.Context) (model.ChangeSet, error) {
	cs := model.ChangeSet{Version: s.nextVersion()}
	err := s.db.View(func(txn *badger.Txn) error {
		if err := iterate(txn, prefixProtocol, func(_, val []byte) error {
			var p model.Protocol
			if err := decode(val, &p); err != nil {
				return err
			}
			cs.Protocols = append(cs.Protocols, p)
			return nil
		}); err != nil {
			return err
		}
		if err := iterate(txn, prefixBlock, func(_, val []byte) error {
			var b model.Block
			if err := decode(val, &b); err != nil {
				return err
			}
			cs.Blocks = append(cs.Blocks, b)
			return nil
		}); err != nil {
			return err
		}
		if err := iterate(txn, prefixAccount, func(_, val []byte) error {
			a, err := decodeAccount(val)
			if err != nil {
				return err
			}
			cs.Accounts = append(cs.Accounts, a)
			return nil
		}); err != nil {
			return err
		}
		return iterate(txn, prefixCycle, func(_, val []byte) error {
			var c model.Cycle
			if err := decode(val, &c); err != nil {
				return err
			}
			cs.Cycles = append(cs.Cycles, c)
			return nil
		})
	})
	if err != nil {
		return model.ChangeSet{}, fmt.Errorf("export store: %w", err)
	}
	return cs, nil
}

// nextVersion returns a strictly increasing commit version based on wall time.
func (s *Store) nextVersion() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := uint64(time.Now().UnixNano())
	if v <= s.lastVersion {
		v = s.lastVersion + 1
	}
	s.lastVersion = v
	return v
}

func get(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get key %q: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return decode(val, v)
	})
}

// iterate calls fn for every key with prefix in ascending order. Only one
// iterator may be open in a read-write transaction, so fn must not iterate.
func iterate(txn *badger.Txn, prefix []byte, fn func(key, val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			return fn(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
