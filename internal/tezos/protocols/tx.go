package protocols

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/cache"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// Tx is the pending batch commits write to. Missing entities are reported
// as model.ErrNotFound.
type Tx interface {
	cache.Store

	PutProtocol(ctx context.Context, p *model.Protocol) error
	DeleteProtocol(ctx context.Context, code string) error

	PutBlock(ctx context.Context, b *model.Block) error
	DeleteBlock(ctx context.Context, level int64) error
	Blocks(ctx context.Context, from, to int64) ([]*model.Block, error)

	PutAccount(ctx context.Context, a model.Account) error
	DeleteAccount(ctx context.Context, a model.Account) error
	Accounts(ctx context.Context) ([]model.Account, error)

	PutOperation(ctx context.Context, op model.Operation) error
	DeleteOperation(ctx context.Context, op model.Operation) error
	Operations(ctx context.Context, level int64) ([]model.Operation, error)

	PutCycle(ctx context.Context, c *model.Cycle) error
	Cycle(ctx context.Context, index int) (*model.Cycle, error)
	Cycles(ctx context.Context) ([]model.Cycle, error)
	DeleteCycle(ctx context.Context, index int) error
	DeleteCycles(ctx context.Context) error

	PutState(ctx context.Context, s *model.AppState) error
}
