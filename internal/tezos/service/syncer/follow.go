package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/workerpool"
)

var fatalErrors = []error{
	protocols.ErrMalformedBlock,
	protocols.ErrUnknownProtocol,
	protocols.ErrMissingEntity,
	protocols.ErrRevertOrder,
	protocols.ErrNotApplied,
	ErrUnexpectedLevel,
	ErrForkTooDeep,
}

// IsFatal reports whether err means the store or the input is inconsistent
// and following must stop.
func IsFatal(err error) bool {
	for _, target := range fatalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Run follows the node head until the context is canceled or an
// inconsistency is found.
func (s *Syncer) Run(ctx context.Context) error {
	backoff := s.newBackoff()
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := s.run(ctx)
		if err == nil {
			backoff = s.newBackoff()
			continue
		}
		if IsFatal(err) {
			s.logger.Error("sync halted", zap.Error(err))
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sleep, _ := backoff.Next()
		s.logger.Warn("run iteration failed, backing off", zap.Error(err), zap.Duration("sleep", sleep))
		if sleepErr := s.sleep(ctx, sleep); sleepErr != nil {
			return sleepErr
		}
	}
}

// newBackoff doubles the failure sleep from SleepDuration up to MaxSleepDuration.
func (s *Syncer) newBackoff() retry.Backoff {
	return retry.WithCappedDuration(s.cfg.MaxSleepDuration, retry.NewExponential(s.cfg.SleepDuration))
}

func (s *Syncer) run(ctx context.Context) error {
	if err := s.SyncMirror(ctx); err != nil {
		s.logger.Warn("mirror sync failed", zap.Error(err))
	}

	state, err := s.head(ctx)
	if err != nil {
		return err
	}

	started := time.Now()
	head, err := s.source.Head(ctx)
	if err != nil {
		s.metrics.ObserveFetch(err, 0, started)
		return fmt.Errorf("fetch head: %w", err)
	}
	if head <= state.Level {
		s.logger.Debug("at node head; sleeping", zap.Int64("level", state.Level), zap.Duration("sleep", s.cfg.IdleDuration))
		return s.sleep(ctx, s.cfg.IdleDuration)
	}

	levels := window(state.Level+1, head, s.cfg.Prefetch)
	blocks, err := workerpool.Map(ctx, s.cfg.Workers, levels, s.source.Block)
	s.metrics.ObserveFetch(err, len(levels), started)
	if err != nil {
		return fmt.Errorf("fetch blocks %d..%d: %w", levels[0], levels[len(levels)-1], err)
	}

	s.logger.Info("applying blocks", zap.Int64("from", levels[0]), zap.Int64("to", levels[len(levels)-1]), zap.Int64("head", head))
	for _, raw := range blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.ApplyBlock(ctx, raw)
		if errors.Is(err, ErrForkDetected) {
			return s.rollback(ctx, state.Level, err)
		}
		if err != nil {
			return err
		}
		s.forkDepth = 0
		state.Level = raw.Level
	}
	return nil
}

// rollback reverts the head after a predecessor mismatch. The next round
// refetches the level and compares again, so a deep fork is unwound one
// block per round.
func (s *Syncer) rollback(ctx context.Context, level int64, cause error) error {
	if s.forkDepth == 0 {
		s.metrics.ObserveFork()
	}
	s.forkDepth++
	if s.forkDepth > s.cfg.MaxForkDepth {
		return fmt.Errorf("%w: %d blocks: %v", ErrForkTooDeep, s.forkDepth-1, cause)
	}
	s.logger.Warn("fork detected, reverting head", zap.Int64("level", level), zap.Int("depth", s.forkDepth), zap.Error(cause))
	return s.RevertBlock(ctx, level)
}

// head returns the committed state; an empty store is at level 0.
func (s *Syncer) head(ctx context.Context) (*model.AppState, error) {
	state, err := s.store.State(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return &model.AppState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	return state, nil
}

func window(from, head int64, size int) []int64 {
	to := from + int64(size) - 1
	if to > head {
		to = head
	}
	levels := make([]int64, 0, to-from+1)
	for l := from; l <= to; l++ {
		levels = append(levels, l)
	}
	return levels
}
