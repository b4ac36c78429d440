package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// ApplyChanges writes one change set. The tables are written by separate
// inserts and are not atomic with each other. Blocks go last so the mirrored
// head only moves once the entities it depends on are stored. A failed call
// may leave account and cycle rows newer than MaxBlockLevel; they are
// rewritten when the change set is retried.
func (r *Repository) ApplyChanges(ctx context.Context, cs model.ChangeSet) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("apply_changes", r.network, err, start)
	}()

	for _, table := range mirrorTables {
		rows := tableRows(r.network, table, cs)
		if len(rows) == 0 {
			continue
		}
		if err = r.insert(ctx, table, rows); err != nil {
			return err
		}
		r.metrics.ObserveRows(table, r.network, len(rows))
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, table string, rows [][]any) error {
	batch, err := r.conn.PrepareBatch(ctx, insertQuery(table))
	if err != nil {
		return fmt.Errorf("prepare %s batch: %w", table, err)
	}
	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
