package proto1

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/safe"
)

// stakeSummary aggregates the delegates taking part in a cycle.
type stakeSummary struct {
	TotalStaking    int64
	TotalDelegated  int64
	TotalDelegators int64
	TotalBakers     int64
	SelectedStake   int64
	SelectedBakers  int64
}

// summarize counts whole rolls only: a delegate with less than one roll is
// not selected, and the remainder of every stake is ignored.
func summarize(p *model.Protocol, accounts []model.Account) (stakeSummary, error) {
	var (
		s   stakeSummary
		err error
	)
	if p.TokensPerRoll <= 0 {
		return s, fmt.Errorf("protocol %s has no roll size: %w", p.Code, protocols.ErrMalformedBlock)
	}
	for _, a := range accounts {
		d, ok := a.(*model.Delegate)
		if !ok {
			continue
		}
		s.TotalBakers++
		if s.TotalStaking, err = safe.Add(s.TotalStaking, d.StakingBalance); err != nil {
			return s, fmt.Errorf("total staking: %w", err)
		}
		if s.TotalDelegated, err = safe.Add(s.TotalDelegated, d.DelegatedBalance); err != nil {
			return s, fmt.Errorf("total delegated: %w", err)
		}
		s.TotalDelegators += d.DelegatorsCount
		if d.StakingBalance >= p.TokensPerRoll {
			s.SelectedBakers++
			rolls := d.StakingBalance - d.StakingBalance%p.TokensPerRoll
			if s.SelectedStake, err = safe.Add(s.SelectedStake, rolls); err != nil {
				return s, fmt.Errorf("selected stake: %w", err)
			}
		}
	}
	return s, nil
}

func newCycle(p *model.Protocol, index int, snapshotLevel int64, s stakeSummary, seed string) *model.Cycle {
	return &model.Cycle{
		Index:           index,
		FirstLevel:      p.CycleStart(index),
		LastLevel:       p.CycleEnd(index),
		SnapshotIndex:   0,
		SnapshotLevel:   snapshotLevel,
		TotalStaking:    s.TotalStaking,
		TotalDelegated:  s.TotalDelegated,
		TotalDelegators: s.TotalDelegators,
		TotalBakers:     s.TotalBakers,
		SelectedStake:   s.SelectedStake,
		SelectedBakers:  s.SelectedBakers,
		Seed:            seed,
	}
}

// BootstrapCycles creates cycles 0 through PreservedCycles from the genesis
// stake distribution. All of them share the same aggregates and differ by seed.
func BootstrapCycles(ctx context.Context, scope *protocols.Scope, p *model.Protocol, accounts []model.Account) error {
	summary, err := summarize(p, accounts)
	if err != nil {
		return err
	}
	state, err := scope.State(ctx)
	if err != nil {
		return err
	}

	count := p.PreservedCycles + 1
	seeds := Seeds(seedMaterial, count)
	for i := 0; i < count; i++ {
		if err := scope.Tx.PutCycle(ctx, newCycle(p, i, 1, summary, seeds[i])); err != nil {
			return err
		}
	}
	state.CyclesCount += count
	return scope.SaveState(ctx)
}

// ClearCycles removes every cycle. It is used only when the activation
// block is reverted.
func ClearCycles(ctx context.Context, scope *protocols.Scope) error {
	state, err := scope.State(ctx)
	if err != nil {
		return err
	}
	if err := scope.Tx.DeleteCycles(ctx); err != nil {
		return err
	}
	state.CyclesCount = 0
	return scope.SaveState(ctx)
}

func startsSnapshotCycle(p *model.Protocol, block *model.Block) bool {
	return block.Events.Has(model.CycleBegin) && p.Cycle(block.Level) > 0
}

// CycleCommit creates the cycle PreservedCycles ahead of the one the block
// begins, from the stake distribution at the end of the previous cycle.
type CycleCommit struct {
	scope    *protocols.Scope
	block    *model.Block
	protocol *model.Protocol
}

// NewCycleCommit builds the snapshot commit of a block that begins a cycle.
func NewCycleCommit(scope *protocols.Scope, block *model.Block, p *model.Protocol) *CycleCommit {
	return &CycleCommit{scope: scope, block: block, protocol: p}
}

func (c *CycleCommit) index() int {
	return c.protocol.Cycle(c.block.Level) + c.protocol.PreservedCycles
}

func (c *CycleCommit) Apply(ctx context.Context) error {
	index := c.index()
	prev, err := c.scope.Tx.Cycle(ctx, index-1)
	if err != nil {
		return fmt.Errorf("load cycle %d: %w", index-1, missing(err))
	}
	accounts, err := c.scope.Tx.Accounts(ctx)
	if err != nil {
		return err
	}
	summary, err := summarize(c.protocol, accounts)
	if err != nil {
		return err
	}
	seed, err := NextSeed(prev.Seed, seedMaterial)
	if err != nil {
		return err
	}
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}

	if err := c.scope.Tx.PutCycle(ctx, newCycle(c.protocol, index, c.block.Level-1, summary, seed)); err != nil {
		return err
	}
	state.CyclesCount++
	return c.scope.SaveState(ctx)
}

func (c *CycleCommit) Revert(ctx context.Context) error {
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	if err := c.scope.Tx.DeleteCycle(ctx, c.index()); err != nil {
		return err
	}
	state.CyclesCount--
	return c.scope.SaveState(ctx)
}
