package proto1

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/encoding"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// TransactionCommit transfers tez from sender to target and pays the fee to
// the baker. Unknown targets are created.
type TransactionCommit struct {
	scope *protocols.Scope
	block *model.Block
	op    *model.TransactionOperation
}

// NewTransactionCommit builds the commit of the transaction at index in block.
func NewTransactionCommit(scope *protocols.Scope, block *model.Block, index int32, raw *model.RawOperation) *TransactionCommit {
	return &TransactionCommit{
		scope: scope,
		block: block,
		op: &model.TransactionOperation{
			Level:   block.Level,
			Index:   index,
			Hash:    raw.Hash,
			Sender:  raw.Source,
			Target:  raw.Destination,
			Amount:  raw.Amount,
			Fee:     raw.Fee,
			Counter: raw.Counter,
		},
	}
}

// RestoreTransactionCommit rebuilds the commit of a stored transaction.
func RestoreTransactionCommit(scope *protocols.Scope, block *model.Block, op *model.TransactionOperation) *TransactionCommit {
	return &TransactionCommit{scope: scope, block: block, op: op}
}

func (c *TransactionCommit) Apply(ctx context.Context) error {
	op := c.op
	if op.Amount < 0 || op.Fee < 0 {
		return fmt.Errorf("transaction %s has negative amount or fee: %w", op.Hash, protocols.ErrMalformedBlock)
	}
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}

	sender, err := c.scope.AccountByAddress(ctx, op.Sender)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}
	op.TargetCreated = false
	target, err := c.resolveTarget(ctx, state)
	if err != nil {
		return err
	}
	op.SenderID = sender.Base().ID
	op.TargetID = target.Base().ID

	if err := chargeFee(ctx, c.scope, c.block, sender, op.Fee); err != nil {
		return err
	}

	s := sender.Base()
	op.PrevCounter = s.Counter
	op.SenderPrevLastLevel = s.LastLevel
	if err := move(&s.Balance, -op.Amount, "sender balance"); err != nil {
		return err
	}
	s.Counter = op.Counter
	s.TransactionsCount++
	s.LastLevel = c.block.Level
	if err := c.scope.SaveAccount(ctx, sender); err != nil {
		return err
	}
	if err := c.scope.Stake(ctx, sender, -op.Amount); err != nil {
		return err
	}

	t := target.Base()
	op.TargetPrevLastLevel = t.LastLevel
	if op.TargetCreated {
		op.TargetPrevLastLevel = c.block.Level
	}
	if err := move(&t.Balance, op.Amount, "target balance"); err != nil {
		return err
	}
	if t.ID != s.ID {
		t.TransactionsCount++
	}
	t.LastLevel = c.block.Level
	if err := c.scope.SaveAccount(ctx, target); err != nil {
		return err
	}
	if err := c.scope.Stake(ctx, target, op.Amount); err != nil {
		return err
	}

	state.ManagerCounter++
	if err := c.scope.SaveState(ctx); err != nil {
		return err
	}
	return c.scope.Tx.PutOperation(ctx, op)
}

func (c *TransactionCommit) resolveTarget(ctx context.Context, state *model.AppState) (model.Account, error) {
	target, err := c.scope.FindAccount(ctx, c.op.Target)
	if err == nil {
		return target, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	state.AccountCounter++
	base := model.AccountBase{
		ID:         state.AccountCounter,
		Address:    c.op.Target,
		Counter:    state.ManagerCounter,
		FirstLevel: c.block.Level,
		LastLevel:  c.block.Level,
	}
	if encoding.IsOriginated(c.op.Target) {
		target = &model.Contract{AccountBase: base}
	} else {
		target = &model.User{AccountBase: base}
	}
	c.op.TargetCreated = true
	if err := c.scope.SaveAccount(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (c *TransactionCommit) Revert(ctx context.Context) error {
	op := c.op
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	sender, err := c.scope.Account(ctx, op.SenderID)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}
	target, err := c.scope.Account(ctx, op.TargetID)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	state.ManagerCounter--

	if err := c.scope.Stake(ctx, target, -op.Amount); err != nil {
		return err
	}
	t := target.Base()
	if err := move(&t.Balance, -op.Amount, "target balance"); err != nil {
		return err
	}
	if t.ID != op.SenderID {
		t.TransactionsCount--
	}
	t.LastLevel = op.TargetPrevLastLevel
	if err := c.scope.SaveAccount(ctx, target); err != nil {
		return err
	}

	if err := c.scope.Stake(ctx, sender, op.Amount); err != nil {
		return err
	}
	s := sender.Base()
	if err := move(&s.Balance, op.Amount, "sender balance"); err != nil {
		return err
	}
	s.Counter = op.PrevCounter
	s.TransactionsCount--
	s.LastLevel = op.SenderPrevLastLevel
	if err := c.scope.SaveAccount(ctx, sender); err != nil {
		return err
	}

	if err := refundFee(ctx, c.scope, c.block, sender, op.Fee); err != nil {
		return err
	}

	if op.TargetCreated {
		if err := c.scope.RemoveAccount(ctx, target); err != nil {
			return err
		}
		state.AccountCounter--
	}
	if err := c.scope.SaveState(ctx); err != nil {
		return err
	}
	return c.scope.Tx.DeleteOperation(ctx, op)
}
