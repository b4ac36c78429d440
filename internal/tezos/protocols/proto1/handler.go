// Package proto1 handles the blocks of the first on-chain protocol.
package proto1

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols/initiator"
)

// Code is the hash of the first on-chain protocol.
const Code = "PtCJ7pwoxe8JasnHY8YonnLYjcVHmhiARPJvqcC6VfHT5s8k8sY"

// Defaults are the protocol constants used when the node does not report them.
var Defaults = model.Constants{
	BlocksPerCycle:        4096,
	BlocksPerVotingPeriod: 32768,
	PreservedCycles:       5,
	TokensPerRoll:         10_000_000_000,
	BlockReward:           16_000_000,
	BlockDeposit:          512_000_000,
}

// Handler processes blocks of protocol Code. It may also be registered for
// later protocols with the same rules: only the block that follows the
// activation block bootstraps accounts and cycles, a later ProtocolBegin just
// starts counting the new protocol weight.
type Handler struct {
	logger *zap.Logger
}

// New builds a Handler.
func New(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger.Named("proto1")}
}

// Commit applies raw. Commits run in this order: protocol activation,
// cycle snapshot, block, operations in inclusion order, unfreezing, state.
func (h *Handler) Commit(ctx context.Context, scope *protocols.Scope, raw *model.RawBlock) error {
	bc, err := NewBlockCommit(ctx, scope, raw)
	if err != nil {
		return fmt.Errorf("init block commit: %w", err)
	}
	block := bc.Block

	activates, err := activatesChain(ctx, scope, block)
	if err != nil {
		return err
	}

	commits := make([]protocols.Commit, 0, len(raw.Operations)+5)
	if activates {
		commits = append(commits, NewProtoActivator(scope, block, bc.Protocol, raw.Bootstrap))
	}
	if startsSnapshotCycle(bc.Protocol, block) {
		commits = append(commits, NewCycleCommit(scope, block, bc.Protocol))
	}
	commits = append(commits, bc)
	for i := range raw.Operations {
		op := &raw.Operations[i]
		index := int32(i)
		switch op.Kind {
		case model.OpTransaction:
			commits = append(commits, NewTransactionCommit(scope, block, index, op))
		case model.OpDelegation:
			commits = append(commits, NewDelegationCommit(scope, block, index, op))
		default:
			return fmt.Errorf("operation %s of kind %q: %w", op.Hash, op.Kind, protocols.ErrMalformedBlock)
		}
	}
	if block.Events.Has(model.CycleEnd) {
		commits = append(commits, NewFreezerCommit(scope, block, bc.Protocol))
	}
	commits = append(commits, protocols.NewStateCommit(scope, block, raw.Metadata.NextProtocol))

	if err := protocols.ApplyAll(ctx, commits...); err != nil {
		return err
	}
	h.logger.Debug("block applied",
		zap.Int64("level", block.Level),
		zap.String("hash", block.Hash),
		zap.Int("operations", len(raw.Operations)),
		zap.Uint32("events", uint32(block.Events)))
	return nil
}

// Revert undoes block by running the commits of Commit in reverse order.
func (h *Handler) Revert(ctx context.Context, scope *protocols.Scope, block *model.Block) error {
	bc, err := RestoreBlockCommit(ctx, scope, block)
	if err != nil {
		return fmt.Errorf("restore block commit: %w", err)
	}
	ops, err := scope.Tx.Operations(ctx, block.Level)
	if err != nil {
		return fmt.Errorf("load operations: %w", err)
	}

	activates, err := activatesChain(ctx, scope, block)
	if err != nil {
		return err
	}

	commits := make([]protocols.Commit, 0, len(ops)+5)
	if activates {
		commits = append(commits, NewProtoActivator(scope, block, bc.Protocol, nil))
	}
	if startsSnapshotCycle(bc.Protocol, block) {
		commits = append(commits, NewCycleCommit(scope, block, bc.Protocol))
	}
	commits = append(commits, bc)
	for _, op := range ops {
		switch v := op.(type) {
		case *model.TransactionOperation:
			commits = append(commits, RestoreTransactionCommit(scope, block, v))
		case *model.DelegationOperation:
			commits = append(commits, RestoreDelegationCommit(scope, block, v))
		default:
			return fmt.Errorf("stored operation %T at level %d: %w", op, block.Level, protocols.ErrMalformedBlock)
		}
	}
	if block.Events.Has(model.CycleEnd) {
		commits = append(commits, NewFreezerCommit(scope, block, bc.Protocol))
	}
	commits = append(commits, protocols.NewStateCommit(scope, block, ""))

	if err := protocols.RevertAll(ctx, commits...); err != nil {
		return err
	}
	h.logger.Debug("block reverted", zap.Int64("level", block.Level), zap.String("hash", block.Hash))
	return nil
}

// activatesChain reports whether block begins its protocol right after the
// activation block.
func activatesChain(ctx context.Context, scope *protocols.Scope, block *model.Block) (bool, error) {
	if !block.Events.Has(model.ProtocolBegin) {
		return false, nil
	}
	prev, err := scope.Block(ctx, block.Level-1)
	if err != nil {
		return false, fmt.Errorf("load predecessor: %w", err)
	}
	return prev.ProtoCode == initiator.Code, nil
}
