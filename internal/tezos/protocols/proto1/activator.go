package proto1

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/encoding"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// ProtoActivator migrates the chain into the protocol: it creates the genesis
// accounts and the first PreservedCycles+1 cycles.
type ProtoActivator struct {
	scope     *protocols.Scope
	block     *model.Block
	protocol  *model.Protocol
	bootstrap []model.RawBootstrapAccount
}

// NewProtoActivator builds the activation commit. Revert ignores bootstrap.
func NewProtoActivator(scope *protocols.Scope, block *model.Block, p *model.Protocol, bootstrap []model.RawBootstrapAccount) *ProtoActivator {
	return &ProtoActivator{scope: scope, block: block, protocol: p, bootstrap: bootstrap}
}

func (c *ProtoActivator) Apply(ctx context.Context) error {
	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}

	accounts := make([]model.Account, 0, len(c.bootstrap))
	byAddress := make(map[string]model.Account, len(c.bootstrap))
	for _, b := range c.bootstrap {
		if _, dup := byAddress[b.Address]; dup {
			return fmt.Errorf("bootstrap account %s listed twice: %w", b.Address, protocols.ErrMalformedBlock)
		}
		_, err := c.scope.FindAccount(ctx, b.Address)
		if err == nil {
			return fmt.Errorf("bootstrap account %s already exists: %w", b.Address, protocols.ErrMalformedBlock)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		state.AccountCounter++
		a := c.newAccount(state.AccountCounter, b)
		accounts = append(accounts, a)
		byAddress[b.Address] = a
	}

	for _, b := range c.bootstrap {
		if b.Delegate == "" || b.Delegate == b.Address {
			continue
		}
		d, ok := byAddress[b.Delegate].(*model.Delegate)
		if !ok {
			return fmt.Errorf("bootstrap account %s delegates to %s which is not a bootstrap baker: %w",
				b.Address, b.Delegate, protocols.ErrMalformedBlock)
		}
		a := byAddress[b.Address].Base()
		a.DelegateID = &d.ID
		d.DelegatorsCount++
		if err := move(&d.StakingBalance, a.Balance, "staking balance"); err != nil {
			return err
		}
		if err := move(&d.DelegatedBalance, a.Balance, "delegated balance"); err != nil {
			return err
		}
	}

	for _, a := range accounts {
		if err := c.scope.SaveAccount(ctx, a); err != nil {
			return err
		}
	}
	if err := c.scope.SaveState(ctx); err != nil {
		return err
	}
	c.scope.Logger.Info("protocol activated",
		zap.String("protocol", c.protocol.Code),
		zap.Int64("level", c.block.Level),
		zap.Int("bootstrap_accounts", len(accounts)))

	return BootstrapCycles(ctx, c.scope, c.protocol, accounts)
}

func (c *ProtoActivator) newAccount(id int64, b model.RawBootstrapAccount) model.Account {
	base := model.AccountBase{
		ID:         id,
		Address:    b.Address,
		Balance:    b.Balance,
		FirstLevel: c.block.Level,
		LastLevel:  c.block.Level,
	}
	switch {
	case encoding.IsOriginated(b.Address):
		return &model.Contract{AccountBase: base}
	case b.Delegate == b.Address:
		base.DelegateID = &base.ID
		return &model.Delegate{
			User:            model.User{AccountBase: base, PublicKey: b.PublicKey},
			ActivationLevel: c.block.Level,
			StakingBalance:  b.Balance,
		}
	default:
		return &model.User{AccountBase: base, PublicKey: b.PublicKey}
	}
}

// Revert removes the cycles and every account first seen at the activation level.
func (c *ProtoActivator) Revert(ctx context.Context) error {
	if err := ClearCycles(ctx, c.scope); err != nil {
		return err
	}

	accounts, err := c.scope.Tx.Accounts(ctx)
	if err != nil {
		return err
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Base().ID > accounts[j].Base().ID })

	state, err := c.scope.State(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.Base().FirstLevel != c.block.Level {
			continue
		}
		if err := c.scope.RemoveAccount(ctx, a); err != nil {
			return err
		}
		state.AccountCounter--
	}
	return c.scope.SaveState(ctx)
}
