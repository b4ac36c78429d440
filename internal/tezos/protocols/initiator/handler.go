// Package initiator handles the block that activates the first protocol.
// That block carries no operations and no baker.
package initiator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// Code is the hash of the activation protocol on mainnet.
const Code = "PrihK96nBAFSxVL1GLJTVhu9YnzkMFiBeuJRPA8NwuZVZCE1L6i"

// Events are the boundary events of the activation block.
const Events = model.CycleBegin | model.ProtocolBegin | model.ProtocolEnd | model.VotingPeriodBegin

// Handler processes the activation block.
type Handler struct {
	logger *zap.Logger
}

// New builds a Handler.
func New(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger.Named("initiator")}
}

// Commit stores the activation block and the first head state.
func (h *Handler) Commit(ctx context.Context, scope *protocols.Scope, raw *model.RawBlock) error {
	bc, err := NewBlockCommit(ctx, scope, raw)
	if err != nil {
		return fmt.Errorf("init block commit: %w", err)
	}
	if err := bc.Apply(ctx); err != nil {
		return fmt.Errorf("apply block commit: %w", err)
	}
	if err := protocols.NewStateCommit(scope, bc.Block, raw.Metadata.NextProtocol).Apply(ctx); err != nil {
		return fmt.Errorf("apply state commit: %w", err)
	}
	h.logger.Info("activation block applied",
		zap.Int64("level", raw.Level),
		zap.String("protocol", raw.Protocol),
		zap.String("next_protocol", raw.Metadata.NextProtocol))
	return nil
}

// Revert removes the activation block and resets the head.
func (h *Handler) Revert(ctx context.Context, scope *protocols.Scope, block *model.Block) error {
	bc, err := RestoreBlockCommit(ctx, scope, block)
	if err != nil {
		return fmt.Errorf("restore block commit: %w", err)
	}
	return protocols.RevertAll(ctx,
		bc,
		protocols.NewStateCommit(scope, block, ""),
	)
}
