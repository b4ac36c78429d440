// Package protocols defines the commit contract shared by protocol handlers
// and dispatches blocks to the handler of their protocol version.
package protocols

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Commit is one reversible unit of a block. A commit is initialized either
	// from raw input or from stored entities; both reach the same shape so the
	// same value can run Apply or Revert.
	Commit interface {
		Apply(ctx context.Context) error
		Revert(ctx context.Context) error
	}

	// Handler processes the blocks of one protocol version.
	Handler interface {
		Commit(ctx context.Context, scope *Scope, raw *model.RawBlock) error
		Revert(ctx context.Context, scope *Scope, block *model.Block) error
	}
)
