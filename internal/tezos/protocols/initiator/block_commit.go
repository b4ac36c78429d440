package initiator

import (
	"context"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// BlockCommit stores the activation block and references its protocol.
type BlockCommit struct {
	scope    *protocols.Scope
	Block    *model.Block
	Protocol *model.Protocol
}

// NewBlockCommit builds the commit of the activation block.
func NewBlockCommit(ctx context.Context, scope *protocols.Scope, raw *model.RawBlock) (*BlockCommit, error) {
	var constants model.Constants
	if raw.Metadata.Constants != nil {
		constants = *raw.Metadata.Constants
	}
	p, err := scope.Protocol(ctx, raw.Protocol, constants)
	if err != nil {
		return nil, err
	}
	return &BlockCommit{
		scope:    scope,
		Protocol: p,
		Block: &model.Block{
			Level:       raw.Level,
			Hash:        raw.Hash,
			Predecessor: raw.Predecessor,
			Timestamp:   raw.Header.Timestamp,
			Priority:    raw.Header.Priority,
			ProtoCode:   raw.Protocol,
			Events:      Events,
		},
	}, nil
}

// RestoreBlockCommit rebuilds the commit of the stored activation block.
func RestoreBlockCommit(ctx context.Context, scope *protocols.Scope, block *model.Block) (*BlockCommit, error) {
	p, err := scope.StoredProtocol(ctx, block.ProtoCode)
	if err != nil {
		return nil, err
	}
	return &BlockCommit{scope: scope, Block: block, Protocol: p}, nil
}

func (c *BlockCommit) Apply(ctx context.Context) error {
	c.Protocol.Weight++
	if err := c.scope.SaveProtocol(ctx, c.Protocol); err != nil {
		return err
	}
	return c.scope.SaveBlock(ctx, c.Block)
}

func (c *BlockCommit) Revert(ctx context.Context) error {
	if err := c.scope.RemoveBlock(ctx, c.Block); err != nil {
		return err
	}
	c.Protocol.Weight--
	if c.Protocol.Weight <= 0 {
		return c.scope.RemoveProtocol(ctx, c.Protocol)
	}
	return c.scope.SaveProtocol(ctx, c.Protocol)
}
