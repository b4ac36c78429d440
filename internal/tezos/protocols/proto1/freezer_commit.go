package proto1

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// FreezerCommit unfreezes, at the end of cycle c, the rewards, deposits and
// fees of the blocks baked in cycle c-PreservedCycles.
type FreezerCommit struct {
	scope    *protocols.Scope
	block    *model.Block
	protocol *model.Protocol
}

// NewFreezerCommit builds the unfreezing commit of a block that ends a cycle.
func NewFreezerCommit(scope *protocols.Scope, block *model.Block, p *model.Protocol) *FreezerCommit {
	return &FreezerCommit{scope: scope, block: block, protocol: p}
}

func (c *FreezerCommit) Apply(ctx context.Context) error {
	return c.unfreeze(ctx, -1)
}

func (c *FreezerCommit) Revert(ctx context.Context) error {
	return c.unfreeze(ctx, 1)
}

// unfreeze applies sign to the frozen balances of every baker of the
// unfrozen cycle. sign is -1 when applying and 1 when reverting.
func (c *FreezerCommit) unfreeze(ctx context.Context, sign int64) error {
	cycle := c.protocol.Cycle(c.block.Level) - c.protocol.PreservedCycles
	if cycle < 0 {
		return nil
	}
	blocks, err := c.scope.Tx.Blocks(ctx, c.protocol.CycleStart(cycle), c.protocol.CycleEnd(cycle))
	if err != nil {
		return fmt.Errorf("load blocks of cycle %d: %w", cycle, err)
	}

	type frozen struct{ rewards, deposits, fees int64 }
	totals := make(map[int64]*frozen)
	var order []int64
	for _, b := range blocks {
		if b.BakerID == nil {
			continue
		}
		p, err := c.scope.StoredProtocol(ctx, b.ProtoCode)
		if err != nil {
			return err
		}
		f, ok := totals[*b.BakerID]
		if !ok {
			f = &frozen{}
			totals[*b.BakerID] = f
			order = append(order, *b.BakerID)
		}
		f.rewards += p.BlockReward
		f.deposits += p.BlockDeposit
		f.fees += b.Fees
	}

	for _, id := range order {
		f := totals[id]
		baker, err := c.scope.DelegateByID(ctx, id)
		if err != nil {
			return err
		}
		if err := move(&baker.FrozenRewards, sign*f.rewards, "frozen rewards"); err != nil {
			return err
		}
		if err := move(&baker.FrozenDeposits, sign*f.deposits, "frozen deposits"); err != nil {
			return err
		}
		if err := move(&baker.FrozenFees, sign*f.fees, "frozen fees"); err != nil {
			return err
		}
		if err := c.scope.SaveAccount(ctx, baker); err != nil {
			return err
		}
	}
	c.scope.Logger.Debug("cycle unfrozen",
		zap.Int("cycle", cycle),
		zap.Int64("level", c.block.Level),
		zap.Int("bakers", len(order)),
		zap.Bool("revert", sign > 0))
	return nil
}
