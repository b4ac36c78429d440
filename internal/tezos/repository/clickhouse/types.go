package clickhouse

import (
	"context"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics records repository outcomes.
	Metrics interface {
		Observe(operation string, network model.Network, err error, started time.Time)
		ObserveRows(table string, network model.Network, rows int)
	}

	// Conn is the subset of the ClickHouse driver the repository uses.
	Conn interface {
		PrepareBatch(ctx context.Context, query string) (Batch, error)
		Query(ctx context.Context, query string, args ...any) (Rows, error)
		Exec(ctx context.Context, query string, args ...any) error
		Close() error
	}

	// Batch is a pending INSERT.
	Batch interface {
		Append(v ...any) error
		Send() error
		Abort() error
	}

	// Rows is a query result cursor.
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}
)
