package proto1

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/safe"
)

// BlockCommit stores the block, references its protocol and pays the baker.
type BlockCommit struct {
	scope    *protocols.Scope
	Block    *model.Block
	Protocol *model.Protocol
	baker    string
}

// NewBlockCommit resolves the protocol and baker of raw and classifies its events.
func NewBlockCommit(ctx context.Context, scope *protocols.Scope, raw *model.RawBlock) (*BlockCommit, error) {
	constants := Defaults
	if raw.Metadata.Constants != nil {
		constants = *raw.Metadata.Constants
	}
	p, err := scope.Protocol(ctx, raw.Protocol, constants)
	if err != nil {
		return nil, err
	}
	if p.BlocksPerCycle <= 0 {
		return nil, fmt.Errorf("protocol %s has no cycle length: %w", p.Code, protocols.ErrMalformedBlock)
	}
	if raw.Metadata.Baker == "" {
		return nil, fmt.Errorf("block %d has no baker: %w", raw.Level, protocols.ErrMalformedBlock)
	}
	return &BlockCommit{
		scope:    scope,
		Protocol: p,
		baker:    raw.Metadata.Baker,
		Block: &model.Block{
			Level:       raw.Level,
			Hash:        raw.Hash,
			Predecessor: raw.Predecessor,
			Timestamp:   raw.Header.Timestamp,
			Priority:    raw.Header.Priority,
			ProtoCode:   raw.Protocol,
			Events:      Events(p, raw),
		},
	}, nil
}

// RestoreBlockCommit rebuilds the commit of a stored block from its protocol
// and baker.
func RestoreBlockCommit(ctx context.Context, scope *protocols.Scope, block *model.Block) (*BlockCommit, error) {
	p, err := scope.StoredProtocol(ctx, block.ProtoCode)
	if err != nil {
		return nil, err
	}
	if block.BakerID == nil {
		return nil, fmt.Errorf("block %d has no baker: %w", block.Level, protocols.ErrMissingEntity)
	}
	return &BlockCommit{scope: scope, Block: block, Protocol: p}, nil
}

// Events classifies the boundary events of raw under protocol p. Events are
// evaluated before the block is counted in the protocol weight.
func Events(p *model.Protocol, raw *model.RawBlock) model.BlockEvents {
	var events model.BlockEvents
	switch raw.Level % p.BlocksPerCycle {
	case 1:
		events |= model.CycleBegin
	case 0:
		events |= model.CycleEnd
	}
	if p.Weight == 0 {
		events |= model.ProtocolBegin
	}
	if raw.Metadata.Protocol != raw.Metadata.NextProtocol {
		events |= model.ProtocolEnd
	}
	if p.BlocksPerVotingPeriod > 0 {
		switch raw.Level % p.BlocksPerVotingPeriod {
		case 1:
			events |= model.VotingPeriodBegin
		case 0:
			events |= model.VotingPeriodEnd
		}
	}
	return events
}

func (c *BlockCommit) Apply(ctx context.Context) error {
	baker, err := c.scope.Delegate(ctx, c.baker)
	if err != nil {
		return fmt.Errorf("resolve baker: %w", err)
	}

	c.Protocol.Weight++
	if err := c.scope.SaveProtocol(ctx, c.Protocol); err != nil {
		return err
	}

	c.Block.BakerID = &baker.ID
	if err := c.scope.SaveBlock(ctx, c.Block); err != nil {
		return err
	}

	if err := reward(baker, c.Protocol.BlockReward, c.Protocol.BlockDeposit); err != nil {
		return err
	}
	if err := c.scope.SaveAccount(ctx, baker); err != nil {
		return err
	}
	return c.scope.Stake(ctx, baker, c.Protocol.BlockReward)
}

// Revert debits the rewards and deposit stored with the block protocol and
// drops the protocol once no block references it.
func (c *BlockCommit) Revert(ctx context.Context) error {
	baker, err := c.scope.DelegateByID(ctx, *c.Block.BakerID)
	if err != nil {
		return fmt.Errorf("resolve baker: %w", err)
	}

	if err := c.scope.Stake(ctx, baker, -c.Protocol.BlockReward); err != nil {
		return err
	}
	if err := reward(baker, -c.Protocol.BlockReward, -c.Protocol.BlockDeposit); err != nil {
		return err
	}
	if err := c.scope.SaveAccount(ctx, baker); err != nil {
		return err
	}

	if err := c.scope.RemoveBlock(ctx, c.Block); err != nil {
		return err
	}

	c.Protocol.Weight--
	if c.Protocol.Weight <= 0 {
		return c.scope.RemoveProtocol(ctx, c.Protocol)
	}
	return c.scope.SaveProtocol(ctx, c.Protocol)
}

func reward(baker *model.Delegate, amount, deposit int64) error {
	var err error
	if baker.Balance, err = safe.Add(baker.Balance, amount); err != nil {
		return fmt.Errorf("baker balance: %w", err)
	}
	if baker.FrozenRewards, err = safe.Add(baker.FrozenRewards, amount); err != nil {
		return fmt.Errorf("baker frozen rewards: %w", err)
	}
	if baker.FrozenDeposits, err = safe.Add(baker.FrozenDeposits, deposit); err != nil {
		return fmt.Errorf("baker frozen deposits: %w", err)
	}
	return nil
}
