package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// Purge deletes every mirrored row of the network.
func (r *Repository) Purge(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("purge", r.network, err, start)
	}()

	for _, table := range mirrorTables {
		if err = r.conn.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE network = ?", table), string(r.network)); err != nil {
			return fmt.Errorf("purge %s: %w", table, err)
		}
	}
	return nil
}
