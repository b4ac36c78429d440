package clickhouse

import (
	"context"
	"fmt"
	"time"
)

const maxBlockLevelQuery = `
SELECT coalesce(max(level), toInt64(0)) AS max_level
FROM tezos_blocks FINAL
WHERE network = ? AND is_deleted = 0`

// MaxBlockLevel returns the highest live block level mirrored for the network.
func (r *Repository) MaxBlockLevel(ctx context.Context) (level int64, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("max_block_level", r.network, err, start)
	}()

	rows, err := r.conn.Query(ctx, maxBlockLevelQuery, string(r.network))
	if err != nil {
		return 0, fmt.Errorf("query max block level: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	if !rows.Next() {
		return 0, fmt.Errorf("max block level not found")
	}
	if err = rows.Scan(&level); err != nil {
		return 0, fmt.Errorf("scan max block level: %w", err)
	}
	if err = rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate max block level: %w", err)
	}
	return level, nil
}
