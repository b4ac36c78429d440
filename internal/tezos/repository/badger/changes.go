package badger

import "github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"

type change[V any] struct {
	value   V
	deleted bool
}

// tracker records the final state of every key touched by a transaction,
// in first-touch order.
type tracker[K comparable, V any] struct {
	order   []K
	changes map[K]change[V]
}

func newTracker[K comparable, V any]() *tracker[K, V] {
	return &tracker[K, V]{changes: make(map[K]change[V])}
}

func (t *tracker[K, V]) touch(k K, c change[V]) {
	if _, ok := t.changes[k]; !ok {
		t.order = append(t.order, k)
	}
	t.changes[k] = c
}

func (t *tracker[K, V]) put(k K, v V) { t.touch(k, change[V]{value: v}) }

func (t *tracker[K, V]) remove(k K) { t.touch(k, change[V]{deleted: true}) }

func (t *tracker[K, V]) split() (values []V, deleted []K) {
	for _, k := range t.order {
		c := t.changes[k]
		if c.deleted {
			deleted = append(deleted, k)
			continue
		}
		values = append(values, c.value)
	}
	return values, deleted
}

type changeLog struct {
	protocols *tracker[string, model.Protocol]
	blocks    *tracker[int64, model.Block]
	accounts  *tracker[int64, model.Account]
	cycles    *tracker[int, model.Cycle]
}

func newChangeLog() *changeLog {
	return &changeLog{
		protocols: newTracker[string, model.Protocol](),
		blocks:    newTracker[int64, model.Block](),
		accounts:  newTracker[int64, model.Account](),
		cycles:    newTracker[int, model.Cycle](),
	}
}

func (l *changeLog) changeSet(version uint64) model.ChangeSet {
	cs := model.ChangeSet{Version: version}
	cs.Protocols, cs.DeletedProtocols = l.protocols.split()
	cs.Blocks, cs.DeletedBlocks = l.blocks.split()
	cs.Accounts, cs.DeletedAccounts = l.accounts.split()
	cs.Cycles, cs.DeletedCycles = l.cycles.split()
	return cs
}
