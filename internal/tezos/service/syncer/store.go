package syncer

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// Tx is one read-write transaction of the local store.
type Tx interface {
	protocols.Tx
	Commit(ctx context.Context) (model.ChangeSet, error)
	Discard()
}

// Store is the transactional local store.
type Store interface {
	Begin(ctx context.Context) Tx
	State(ctx context.Context) (*model.AppState, error)
	Export(ctx context.Context) (model.ChangeSet, error)
}
