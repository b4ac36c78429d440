package protocols

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// StateCommit checkpoints the sync head. It runs last when a block is applied
// and first when it is reverted.
type StateCommit struct {
	scope        *Scope
	block        *model.Block
	nextProtocol string
}

// NewStateCommit builds the checkpoint of block. nextProtocol is only used on
// Apply.
func NewStateCommit(scope *Scope, block *model.Block, nextProtocol string) *StateCommit {
	return &StateCommit{scope: scope, block: block, nextProtocol: nextProtocol}
}

func (c *StateCommit) Apply(ctx context.Context) error {
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	state.Level = c.block.Level
	state.Hash = c.block.Hash
	state.Timestamp = c.block.Timestamp
	state.Protocol = c.block.ProtoCode
	state.NextProtocol = c.nextProtocol
	state.BlocksCount++
	return c.scope.SaveState(ctx)
}

// Revert moves the head back to the predecessor block.
func (c *StateCommit) Revert(ctx context.Context) error {
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	if state.Level != c.block.Level {
		return fmt.Errorf("state at %d, reverting %d: %w", state.Level, c.block.Level, ErrRevertOrder)
	}

	prevLevel := c.block.Level - 1
	if prevLevel < GenesisLevel {
		state.Level = 0
		state.Hash = ""
		state.Timestamp = time.Time{}
		state.Protocol = ""
		state.NextProtocol = ""
	} else {
		prev, err := c.scope.Block(ctx, prevLevel)
		if err != nil {
			return err
		}
		state.Level = prev.Level
		state.Hash = prev.Hash
		state.Timestamp = prev.Timestamp
		state.Protocol = prev.ProtoCode
		state.NextProtocol = c.block.ProtoCode
	}
	state.BlocksCount--
	return c.scope.SaveState(ctx)
}
