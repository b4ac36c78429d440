package cache

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Store is the read side of the pending transaction. Implementations
	// return model.ErrNotFound for missing entities and must observe writes
	// made earlier in the same transaction.
	Store interface {
		Protocol(ctx context.Context, code string) (*model.Protocol, error)
		Account(ctx context.Context, id int64) (model.Account, error)
		AccountByAddress(ctx context.Context, address string) (model.Account, error)
		Block(ctx context.Context, level int64) (*model.Block, error)
		State(ctx context.Context) (*model.AppState, error)
	}
)
