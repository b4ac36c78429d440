// Package syncer applies and reverts Tezos blocks against the local store
// and keeps the relational mirror in step with it.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/clock"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/cache"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// Config tunes the follower loop. Zero values select defaults.
type Config struct {
	Network          model.Network
	Workers          int
	Prefetch         int
	MaxRetries       uint64
	RetryBase        time.Duration
	SleepDuration    time.Duration
	MaxSleepDuration time.Duration
	IdleDuration     time.Duration
	MaxForkDepth     int
	MirrorBacklog    int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkerCount
	}
	if c.Prefetch <= 0 {
		c.Prefetch = defaultPrefetch
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.RetryBase <= 0 {
		c.RetryBase = defaultRetryBase
	}
	if c.SleepDuration <= 0 {
		c.SleepDuration = defaultSleepDuration
	}
	if c.MaxSleepDuration <= 0 {
		c.MaxSleepDuration = defaultMaxSleepDuration
	}
	if c.IdleDuration <= 0 {
		c.IdleDuration = defaultIdleDuration
	}
	if c.MaxForkDepth <= 0 {
		c.MaxForkDepth = defaultMaxForkDepth
	}
	if c.MirrorBacklog <= 0 {
		c.MirrorBacklog = defaultMirrorBacklog
	}
	return c
}

// Syncer is the single writer of the local store.
type Syncer struct {
	logger   *zap.Logger
	cfg      Config
	store    Store
	cache    *cache.Cache
	registry Registry
	source   Source
	mirror   Mirror
	metrics  Metrics
	sleep    func(context.Context, time.Duration) error

	pending   []model.ChangeSet
	reconcile bool
	forkDepth int
}

// New builds a Syncer. The mirror is optional.
func New(
	store Store,
	c *cache.Cache,
	registry Registry,
	source Source,
	mirror Mirror,
	metrics Metrics,
	logger *zap.Logger,
	cfg Config,
) (*Syncer, error) {
	if store == nil {
		return nil, errors.New("syncer store is required")
	}
	if c == nil {
		return nil, errors.New("syncer cache is required")
	}
	if registry == nil {
		return nil, errors.New("syncer registry is required")
	}
	if source == nil {
		return nil, errors.New("syncer source is required")
	}
	if metrics == nil {
		return nil, errors.New("syncer metrics is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	return &Syncer{
		logger:    logger.With(zap.String("network", string(cfg.Network))),
		cfg:       cfg,
		store:     store,
		cache:     c,
		registry:  registry,
		source:    source,
		mirror:    mirror,
		metrics:   metrics,
		sleep:     clock.SleepWithContext,
		reconcile: mirror != nil,
	}, nil
}

// ApplyBlock indexes raw on top of the stored head.
func (s *Syncer) ApplyBlock(ctx context.Context, raw *model.RawBlock) (err error) {
	started := time.Now()
	operations := 0
	if raw != nil {
		operations = len(raw.Operations)
	}
	defer func() {
		s.metrics.ObserveApply(err, operations, started)
	}()

	if err = Validate(raw); err != nil {
		return err
	}

	changes, err := s.transact(ctx, func(ctx context.Context, scope *protocols.Scope) error {
		state, err := scope.State(ctx)
		if err != nil {
			return err
		}
		if raw.Level != state.Level+1 {
			return fmt.Errorf("block %d on head %d: %w", raw.Level, state.Level, ErrUnexpectedLevel)
		}
		if state.Level > 0 && raw.Predecessor != state.Hash {
			return fmt.Errorf("block %d predecessor %s, head %s: %w", raw.Level, raw.Predecessor, state.Hash, ErrForkDetected)
		}
		handler, err := s.registry.Resolve(raw.Level, raw.Protocol)
		if err != nil {
			return err
		}
		return handler.Commit(ctx, scope, raw)
	})
	if err != nil {
		return fmt.Errorf("apply block %d: %w", raw.Level, err)
	}

	s.logger.Debug("block applied",
		zap.Int64("level", raw.Level),
		zap.String("hash", raw.Hash),
		zap.Int("operations", operations),
	)
	s.metrics.SetLevel(raw.Level)
	s.enqueue(ctx, changes)
	return nil
}

// RevertBlock undoes the block at level, which must be the stored head.
func (s *Syncer) RevertBlock(ctx context.Context, level int64) (err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveRevert(err, started)
	}()

	changes, err := s.transact(ctx, func(ctx context.Context, scope *protocols.Scope) error {
		state, err := scope.State(ctx)
		if err != nil {
			return err
		}
		switch {
		case level > state.Level || level < protocols.GenesisLevel:
			return fmt.Errorf("level %d above head %d: %w", level, state.Level, protocols.ErrNotApplied)
		case level < state.Level:
			return fmt.Errorf("level %d below head %d: %w", level, state.Level, protocols.ErrRevertOrder)
		}
		block, err := scope.Block(ctx, level)
		if errors.Is(err, protocols.ErrMissingEntity) {
			return fmt.Errorf("level %d: %w", level, protocols.ErrNotApplied)
		}
		if err != nil {
			return err
		}
		handler, err := s.registry.Resolve(block.Level, block.ProtoCode)
		if err != nil {
			return err
		}
		return handler.Revert(ctx, scope, block)
	})
	if err != nil {
		return fmt.Errorf("revert block %d: %w", level, err)
	}

	s.logger.Info("block reverted", zap.Int64("level", level))
	s.metrics.SetLevel(level - 1)
	s.enqueue(ctx, changes)
	return nil
}

// RevertTo reverts blocks from the head down until level is the head.
func (s *Syncer) RevertTo(ctx context.Context, level int64) error {
	if level < 0 {
		return fmt.Errorf("revert to negative level %d", level)
	}
	state, err := s.head(ctx)
	if err != nil {
		return err
	}
	for l := state.Level; l > level; l-- {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.RevertBlock(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// transact runs fn in a fresh store transaction and commits it. The block
// runs to completion regardless of ctx cancellation; commit failures retry
// it with exponential backoff.
func (s *Syncer) transact(ctx context.Context, fn func(context.Context, *protocols.Scope) error) (model.ChangeSet, error) {
	ctx = context.WithoutCancel(ctx)
	backoff := retry.WithMaxRetries(s.cfg.MaxRetries, retry.NewExponential(s.cfg.RetryBase))

	var changes model.ChangeSet
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		cs, err := s.attempt(ctx, fn)
		if err != nil {
			s.cache.Reset()
			var ce *commitError
			if errors.As(err, &ce) {
				s.logger.Warn("store commit failed, retrying block", zap.Error(err))
				return retry.RetryableError(err)
			}
			return err
		}
		changes = cs
		return nil
	})
	return changes, err
}

func (s *Syncer) attempt(ctx context.Context, fn func(context.Context, *protocols.Scope) error) (model.ChangeSet, error) {
	tx := s.store.Begin(ctx)
	defer tx.Discard()

	if err := fn(ctx, protocols.NewScope(s.cache, tx, s.logger)); err != nil {
		return model.ChangeSet{}, err
	}
	changes, err := tx.Commit(ctx)
	if err != nil {
		return model.ChangeSet{}, &commitError{err: err}
	}
	return changes, nil
}
