package proto1

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

func blockBaker(ctx context.Context, scope *protocols.Scope, block *model.Block) (*model.Delegate, error) {
	if block.BakerID == nil {
		return nil, fmt.Errorf("block %d has no baker: %w", block.Level, protocols.ErrMissingEntity)
	}
	return scope.DelegateByID(ctx, *block.BakerID)
}

// chargeFee moves an operation fee from sender to the block baker, where it
// stays frozen, and counts the operation in the block.
func chargeFee(ctx context.Context, scope *protocols.Scope, block *model.Block, sender model.Account, fee int64) error {
	baker, err := blockBaker(ctx, scope, block)
	if err != nil {
		return err
	}

	if err := move(&sender.Base().Balance, -fee, "sender balance"); err != nil {
		return err
	}
	if err := scope.SaveAccount(ctx, sender); err != nil {
		return err
	}
	if err := scope.Stake(ctx, sender, -fee); err != nil {
		return err
	}

	if err := move(&baker.Balance, fee, "baker balance"); err != nil {
		return err
	}
	if err := move(&baker.FrozenFees, fee, "baker frozen fees"); err != nil {
		return err
	}
	if err := scope.SaveAccount(ctx, baker); err != nil {
		return err
	}
	if err := scope.Stake(ctx, baker, fee); err != nil {
		return err
	}

	if err := move(&block.Fees, fee, "block fees"); err != nil {
		return err
	}
	block.OperationsCount++
	return scope.SaveBlock(ctx, block)
}

func refundFee(ctx context.Context, scope *protocols.Scope, block *model.Block, sender model.Account, fee int64) error {
	baker, err := blockBaker(ctx, scope, block)
	if err != nil {
		return err
	}

	if err := move(&block.Fees, -fee, "block fees"); err != nil {
		return err
	}
	block.OperationsCount--
	if err := scope.SaveBlock(ctx, block); err != nil {
		return err
	}

	if err := scope.Stake(ctx, baker, -fee); err != nil {
		return err
	}
	if err := move(&baker.Balance, -fee, "baker balance"); err != nil {
		return err
	}
	if err := move(&baker.FrozenFees, -fee, "baker frozen fees"); err != nil {
		return err
	}
	if err := scope.SaveAccount(ctx, baker); err != nil {
		return err
	}

	if err := scope.Stake(ctx, sender, fee); err != nil {
		return err
	}
	if err := move(&sender.Base().Balance, fee, "sender balance"); err != nil {
		return err
	}
	return scope.SaveAccount(ctx, sender)
}
