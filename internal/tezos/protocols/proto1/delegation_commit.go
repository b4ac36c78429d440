package proto1

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// DelegationCommit moves an account to another delegate, removes its delegate
// or registers the sender as a delegate when it delegates to itself.
type DelegationCommit struct {
	scope *protocols.Scope
	block *model.Block
	op    *model.DelegationOperation
}

// NewDelegationCommit builds the commit of the delegation at index in block.
func NewDelegationCommit(scope *protocols.Scope, block *model.Block, index int32, raw *model.RawOperation) *DelegationCommit {
	return &DelegationCommit{
		scope: scope,
		block: block,
		op: &model.DelegationOperation{
			Level:        block.Level,
			Index:        index,
			Hash:         raw.Hash,
			Sender:       raw.Source,
			Delegate:     raw.Delegate,
			Fee:          raw.Fee,
			Counter:      raw.Counter,
			Registration: raw.Delegate != "" && raw.Delegate == raw.Source,
		},
	}
}

// RestoreDelegationCommit rebuilds the commit of a stored delegation.
func RestoreDelegationCommit(scope *protocols.Scope, block *model.Block, op *model.DelegationOperation) *DelegationCommit {
	return &DelegationCommit{scope: scope, block: block, op: op}
}

func (c *DelegationCommit) Apply(ctx context.Context) error {
	op := c.op
	if op.Fee < 0 {
		return fmt.Errorf("delegation %s has negative fee: %w", op.Hash, protocols.ErrMalformedBlock)
	}
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	sender, err := c.scope.AccountByAddress(ctx, op.Sender)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}
	if _, ok := sender.(*model.Delegate); ok {
		return fmt.Errorf("delegate %s cannot change its delegate: %w", op.Sender, protocols.ErrMalformedBlock)
	}
	if _, ok := sender.(*model.Contract); ok && op.Registration {
		return fmt.Errorf("contract %s cannot register as delegate: %w", op.Sender, protocols.ErrMalformedBlock)
	}

	var target *model.Delegate
	if op.Delegate != "" && !op.Registration {
		if target, err = c.scope.Delegate(ctx, op.Delegate); err != nil {
			return fmt.Errorf("resolve delegate: %w", err)
		}
	}

	s := sender.Base()
	op.SenderID = s.ID
	op.DelegateID = nil
	op.PrevDelegateID = cloneID(s.DelegateID)
	op.PrevCounter = s.Counter
	op.PrevLastLevel = s.LastLevel

	if err := chargeFee(ctx, c.scope, c.block, sender, op.Fee); err != nil {
		return err
	}
	if err := c.undelegate(ctx, sender); err != nil {
		return err
	}

	switch {
	case op.Registration:
		sender = c.register(sender.(*model.User))
		op.DelegateID = cloneID(&s.ID)
	case target != nil:
		s.DelegateID = cloneID(&target.ID)
		op.DelegateID = cloneID(&target.ID)
		if err := c.delegate(ctx, sender); err != nil {
			return err
		}
	default:
		s.DelegateID = nil
	}

	s = sender.Base()
	s.Counter = op.Counter
	s.DelegationsCount++
	s.LastLevel = c.block.Level
	if err := c.scope.SaveAccount(ctx, sender); err != nil {
		return err
	}

	state.ManagerCounter++
	if err := c.scope.SaveState(ctx); err != nil {
		return err
	}
	return c.scope.Tx.PutOperation(ctx, op)
}

func (c *DelegationCommit) Revert(ctx context.Context) error {
	op := c.op
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	sender, err := c.scope.Account(ctx, op.SenderID)
	if err != nil {
		return fmt.Errorf("resolve sender: %w", err)
	}

	state.ManagerCounter--

	s := sender.Base()
	s.Counter = op.PrevCounter
	s.DelegationsCount--
	s.LastLevel = op.PrevLastLevel

	switch {
	case op.Registration:
		d, ok := sender.(*model.Delegate)
		if !ok {
			return fmt.Errorf("account %d is not a registered delegate: %w", op.SenderID, protocols.ErrMissingEntity)
		}
		sender = c.unregister(d)
	case op.DelegateID != nil:
		if err := c.undelegate(ctx, sender); err != nil {
			return err
		}
	}

	sender.Base().DelegateID = cloneID(op.PrevDelegateID)
	if op.PrevDelegateID != nil {
		if err := c.delegate(ctx, sender); err != nil {
			return err
		}
	}
	if err := c.scope.SaveAccount(ctx, sender); err != nil {
		return err
	}

	if err := refundFee(ctx, c.scope, c.block, sender, op.Fee); err != nil {
		return err
	}
	if err := c.scope.SaveState(ctx); err != nil {
		return err
	}
	return c.scope.Tx.DeleteOperation(ctx, op)
}

// undelegate removes the whole balance of account from its current delegate.
func (c *DelegationCommit) undelegate(ctx context.Context, account model.Account) error {
	base := account.Base()
	if base.DelegateID == nil {
		return nil
	}
	d, err := c.scope.DelegateByID(ctx, *base.DelegateID)
	if err != nil {
		return err
	}
	if err := move(&d.StakingBalance, -base.Balance, "staking balance"); err != nil {
		return err
	}
	if err := move(&d.DelegatedBalance, -base.Balance, "delegated balance"); err != nil {
		return err
	}
	d.DelegatorsCount--
	return c.scope.SaveAccount(ctx, d)
}

// delegate adds the whole balance of account to the delegate it points to.
func (c *DelegationCommit) delegate(ctx context.Context, account model.Account) error {
	base := account.Base()
	d, err := c.scope.DelegateByID(ctx, *base.DelegateID)
	if err != nil {
		return err
	}
	if err := move(&d.StakingBalance, base.Balance, "staking balance"); err != nil {
		return err
	}
	if err := move(&d.DelegatedBalance, base.Balance, "delegated balance"); err != nil {
		return err
	}
	d.DelegatorsCount++
	return c.scope.SaveAccount(ctx, d)
}

func (c *DelegationCommit) register(u *model.User) *model.Delegate {
	d := &model.Delegate{
		User:            *u,
		ActivationLevel: c.block.Level,
		StakingBalance:  u.Balance,
	}
	d.DelegateID = cloneID(&d.ID)
	return d
}

func (c *DelegationCommit) unregister(d *model.Delegate) *model.User {
	u := d.User
	u.DelegateID = nil
	return &u
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
