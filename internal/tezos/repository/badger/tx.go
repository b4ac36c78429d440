package badger

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// ErrTxDone is returned when a committed or discarded transaction is used.
var ErrTxDone = errors.New("transaction already finished")

// Tx is the pending batch of one block. Reads observe the writes made earlier
// in the same transaction.
type Tx struct {
	txn     *badger.Txn
	store   *Store
	changes *changeLog
	done    bool
}

func (t *Tx) set(key []byte, v any) error {
	if t.done {
		return ErrTxDone
	}
	val, err := encode(v)
	if err != nil {
		return err
	}
	if err := t.txn.Set(key, val); err != nil {
		return fmt.Errorf("set key %q: %w", key, err)
	}
	return nil
}

func (t *Tx) del(key []byte) error {
	if t.done {
		return ErrTxDone
	}
	if err := t.txn.Delete(key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

func (t *Tx) get(key []byte, v any) error {
	if t.done {
		return ErrTxDone
	}
	return get(t.txn, key, v)
}

func (t *Tx) Protocol(_ context.Context, code string) (*model.Protocol, error) {
	var p model.Protocol
	if err := t.get(protocolKey(code), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Tx) PutProtocol(_ context.Context, p *model.Protocol) error {
	if err := t.set(protocolKey(p.Code), p); err != nil {
		return fmt.Errorf("put protocol %s: %w", p.Code, err)
	}
	t.changes.protocols.put(p.Code, *p)
	return nil
}

func (t *Tx) DeleteProtocol(_ context.Context, code string) error {
	if err := t.del(protocolKey(code)); err != nil {
		return fmt.Errorf("delete protocol %s: %w", code, err)
	}
	t.changes.protocols.remove(code)
	return nil
}

func (t *Tx) Block(_ context.Context, level int64) (*model.Block, error) {
	var b model.Block
	if err := t.get(blockKey(level), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (t *Tx) PutBlock(_ context.Context, b *model.Block) error {
	if err := t.set(blockKey(b.Level), b); err != nil {
		return fmt.Errorf("put block %d: %w", b.Level, err)
	}
	t.changes.blocks.put(b.Level, *b)
	return nil
}

func (t *Tx) DeleteBlock(_ context.Context, level int64) error {
	if err := t.del(blockKey(level)); err != nil {
		return fmt.Errorf("delete block %d: %w", level, err)
	}
	t.changes.blocks.remove(level)
	return nil
}

// Blocks returns the stored blocks with level in [from, to] in ascending order.
func (t *Tx) Blocks(_ context.Context, from, to int64) ([]*model.Block, error) {
	if t.done {
		return nil, ErrTxDone
	}
	var blocks []*model.Block
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefixBlock
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(blockKey(from)); it.ValidForPrefix(prefixBlock); it.Next() {
		item := it.Item()
		level := int64(binary.BigEndian.Uint64(item.Key()[len(prefixBlock):]))
		if level > to {
			break
		}
		var b model.Block
		if err := item.Value(func(val []byte) error { return decode(val, &b) }); err != nil {
			return nil, fmt.Errorf("read block %d: %w", level, err)
		}
		blocks = append(blocks, &b)
	}
	return blocks, nil
}

func (t *Tx) Account(_ context.Context, id int64) (model.Account, error) {
	if t.done {
		return nil, ErrTxDone
	}
	item, err := t.txn.Get(accountKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account %d: %w", id, err)
	}
	var a model.Account
	err = item.Value(func(val []byte) error {
		var err error
		a, err = decodeAccount(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (t *Tx) AccountByAddress(ctx context.Context, address string) (model.Account, error) {
	if t.done {
		return nil, ErrTxDone
	}
	item, err := t.txn.Get(addressKey(address))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get address %s: %w", address, err)
	}
	var id int64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("address index %s: invalid length %d", address, len(val))
		}
		id = int64(binary.BigEndian.Uint64(val))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t.Account(ctx, id)
}

// PutAccount writes a in its current variant and indexes its address.
func (t *Tx) PutAccount(_ context.Context, a model.Account) error {
	if t.done {
		return ErrTxDone
	}
	base := a.Base()
	val, err := encodeAccount(a)
	if err != nil {
		return err
	}
	if err := t.txn.Set(accountKey(base.ID), val); err != nil {
		return fmt.Errorf("put account %d: %w", base.ID, err)
	}
	if err := t.txn.Set(addressKey(base.Address), be64(base.ID)); err != nil {
		return fmt.Errorf("index account %d: %w", base.ID, err)
	}
	t.changes.accounts.put(base.ID, model.CloneAccount(a))
	return nil
}

func (t *Tx) DeleteAccount(_ context.Context, a model.Account) error {
	base := a.Base()
	if err := t.del(accountKey(base.ID)); err != nil {
		return fmt.Errorf("delete account %d: %w", base.ID, err)
	}
	if err := t.del(addressKey(base.Address)); err != nil {
		return fmt.Errorf("delete address %s: %w", base.Address, err)
	}
	t.changes.accounts.remove(base.ID)
	return nil
}

// Accounts returns every stored account ordered by id.
func (t *Tx) Accounts(_ context.Context) ([]model.Account, error) {
	if t.done {
		return nil, ErrTxDone
	}
	var accounts []model.Account
	err := iterate(t.txn, prefixAccount, func(_, val []byte) error {
		a, err := decodeAccount(val)
		if err != nil {
			return err
		}
		accounts = append(accounts, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (t *Tx) PutOperation(_ context.Context, op model.Operation) error {
	if t.done {
		return ErrTxDone
	}
	level, index := op.Position()
	val, err := encodeOperation(op)
	if err != nil {
		return err
	}
	if err := t.txn.Set(operationKey(level, index), val); err != nil {
		return fmt.Errorf("put operation %d/%d: %w", level, index, err)
	}
	return nil
}

func (t *Tx) DeleteOperation(_ context.Context, op model.Operation) error {
	level, index := op.Position()
	if err := t.del(operationKey(level, index)); err != nil {
		return fmt.Errorf("delete operation %d/%d: %w", level, index, err)
	}
	return nil
}

// Operations returns the operations stored for level in inclusion order.
func (t *Tx) Operations(_ context.Context, level int64) ([]model.Operation, error) {
	if t.done {
		return nil, ErrTxDone
	}
	var ops []model.Operation
	err := iterate(t.txn, operationLevelPrefix(level), func(_, val []byte) error {
		op, err := decodeOperation(val)
		if err != nil {
			return err
		}
		ops = append(ops, op)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list operations of %d: %w", level, err)
	}
	return ops, nil
}

func (t *Tx) PutCycle(_ context.Context, c *model.Cycle) error {
	if err := t.set(cycleKey(c.Index), c); err != nil {
		return fmt.Errorf("put cycle %d: %w", c.Index, err)
	}
	t.changes.cycles.put(c.Index, *c)
	return nil
}

func (t *Tx) Cycle(_ context.Context, index int) (*model.Cycle, error) {
	var c model.Cycle
	if err := t.get(cycleKey(index), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *Tx) DeleteCycle(_ context.Context, index int) error {
	if err := t.del(cycleKey(index)); err != nil {
		return fmt.Errorf("delete cycle %d: %w", index, err)
	}
	t.changes.cycles.remove(index)
	return nil
}

// Cycles returns every stored cycle ordered by index.
func (t *Tx) Cycles(_ context.Context) ([]model.Cycle, error) {
	if t.done {
		return nil, ErrTxDone
	}
	var cycles []model.Cycle
	err := iterate(t.txn, prefixCycle, func(_, val []byte) error {
		var c model.Cycle
		if err := decode(val, &c); err != nil {
			return err
		}
		cycles = append(cycles, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// DeleteCycles removes every stored cycle.
func (t *Tx) DeleteCycles(ctx context.Context) error {
	cycles, err := t.Cycles(ctx)
	if err != nil {
		return err
	}
	for _, c := range cycles {
		if err := t.del(cycleKey(c.Index)); err != nil {
			return fmt.Errorf("delete cycle %d: %w", c.Index, err)
		}
		t.changes.cycles.remove(c.Index)
	}
	return nil
}

func (t *Tx) State(_ context.Context) (*model.AppState, error) {
	var s model.AppState
	if err := t.get(keyState, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *Tx) PutState(_ context.Context, s *model.AppState) error {
	if err := t.set(keyState, s); err != nil {
		return fmt.Errorf("put state: %w", err)
	}
	return nil
}

// Commit makes the transaction durable and returns what it changed.
func (t *Tx) Commit(_ context.Context) (model.ChangeSet, error) {
	if t.done {
		return model.ChangeSet{}, ErrTxDone
	}
	t.done = true
	if err := t.txn.Commit(); err != nil {
		return model.ChangeSet{}, fmt.Errorf("commit badger txn: %w", err)
	}
	return t.changes.changeSet(t.store.nextVersion()), nil
}

// Discard drops the pending writes. It is a no-op after Commit.
func (t *Tx) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.txn.Discard()
}
