// Package clickhouse mirrors the indexed Tezos entities into ClickHouse
// ReplacingMergeTree tables.
//
// The mirror is eventually consistent. Readers that need a consistent view
// bound their queries by MaxBlockLevel; the badger store stays the source of
// truth for the indexer itself.
package clickhouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

const (
	tableProtocols = "tezos_protocols"
	tableBlocks    = "tezos_blocks"
	tableAccounts  = "tezos_accounts"
	tableCycles    = "tezos_cycles"
)

// mirrorTables lists the tables in the order change sets are written.
var mirrorTables = []string{tableProtocols, tableAccounts, tableCycles, tableBlocks}

// Repository writes change sets of one network.
type Repository struct {
	conn    Conn
	network model.Network
	metrics Metrics
}

// NewRepository opens a ClickHouse connection for network.
func NewRepository(dsn string, network model.Network, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}
	if network == "" {
		return nil, errors.New("clickhouse network is required")
	}
	if metrics == nil {
		return nil, errors.New("clickhouse metrics is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: nativeConn{conn: conn}, network: network, metrics: metrics}, nil
}

// Close closes the connection.
func (r *Repository) Close() error {
	if err := r.conn.Close(); err != nil {
		return fmt.Errorf("close clickhouse: %w", err)
	}
	return nil
}

type nativeConn struct {
	conn driver.Conn
}

func (c nativeConn) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	return c.conn.PrepareBatch(ctx, query)
}

func (c nativeConn) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return c.conn.Query(ctx, query, args...)
}

func (c nativeConn) Exec(ctx context.Context, query string, args ...any) error {
	return c.conn.Exec(ctx, query, args...)
}

func (c nativeConn) Close() error {
	return c.conn.Close()
}
