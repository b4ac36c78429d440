package syncer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// enqueue queues a committed change set for the mirror and flushes the queue.
func (s *Syncer) enqueue(ctx context.Context, changes model.ChangeSet) {
	if s.mirror == nil || changes.Empty() || s.reconcile {
		return
	}
	s.pending = append(s.pending, changes)
	if len(s.pending) > s.cfg.MirrorBacklog {
		s.logger.Warn("mirror backlog overflow, scheduling rebuild", zap.Int("backlog", len(s.pending)))
		s.pending = nil
		s.reconcile = true
		s.metrics.SetMirrorBacklog(0)
		return
	}
	s.flushMirror(ctx)
}

// flushMirror sends pending change sets in commit order and stops at the
// first failure, keeping the rest for the next attempt.
func (s *Syncer) flushMirror(ctx context.Context) {
	defer func() {
		s.metrics.SetMirrorBacklog(len(s.pending))
	}()
	for len(s.pending) > 0 {
		if err := s.mirror.ApplyChanges(ctx, s.pending[0]); err != nil {
			s.logger.Warn("mirror apply failed, keeping backlog", zap.Error(err), zap.Int("backlog", len(s.pending)))
			return
		}
		s.pending[0] = model.ChangeSet{}
		s.pending = s.pending[1:]
	}
}

// SyncMirror flushes the backlog, or rebuilds the mirror from the store
// when a rebuild is scheduled and the mirrored head differs from the store.
func (s *Syncer) SyncMirror(ctx context.Context) error {
	if s.mirror == nil {
		return nil
	}
	if !s.reconcile {
		s.flushMirror(ctx)
		return nil
	}

	state, err := s.head(ctx)
	if err != nil {
		return err
	}
	mirrored, err := s.mirror.MaxBlockLevel(ctx)
	if err != nil {
		return fmt.Errorf("read mirror head: %w", err)
	}
	if mirrored == state.Level {
		s.logger.Info("mirror in step with store", zap.Int64("level", mirrored))
		s.reconcile = false
		return nil
	}

	s.logger.Info("rebuilding mirror", zap.Int64("mirror_level", mirrored), zap.Int64("store_level", state.Level))
	if err := s.mirror.Purge(ctx); err != nil {
		return fmt.Errorf("purge mirror: %w", err)
	}
	export, err := s.store.Export(ctx)
	if err != nil {
		return err
	}
	if err := s.mirror.ApplyChanges(ctx, export); err != nil {
		return fmt.Errorf("mirror export: %w", err)
	}
	s.reconcile = false
	s.pending = nil
	s.metrics.SetMirrorBacklog(0)
	return nil
}
