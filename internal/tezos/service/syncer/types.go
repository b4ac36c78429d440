package syncer

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Registry selects the protocol handler for a level.
	Registry interface {
		Resolve(level int64, code string) (protocols.Handler, error)
	}

	// Source delivers decoded blocks from a node.
	Source interface {
		Head(ctx context.Context) (int64, error)
		Block(ctx context.Context, level int64) (*model.RawBlock, error)
	}

	// Mirror receives committed change sets.
	Mirror interface {
		ApplyChanges(ctx context.Context, changes model.ChangeSet) error
		MaxBlockLevel(ctx context.Context) (int64, error)
		Purge(ctx context.Context) error
	}

	// Metrics records sync outcomes.
	Metrics interface {
		ObserveApply(err error, operations int, started time.Time)
		ObserveRevert(err error, started time.Time)
		ObserveFetch(err error, blocks int, started time.Time)
		ObserveFork()
		SetLevel(level int64)
		SetMirrorBacklog(n int)
	}
)
