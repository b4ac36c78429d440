package protocols

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/cache"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/safe"
)

// Scope bundles what commits of one block share: the cache, the pending
// transaction and a logger. Save helpers write to both the transaction and
// the cache so later commits of the same block read the new values.
type Scope struct {
	Cache  *cache.Cache
	Tx     Tx
	Logger *zap.Logger
}

// NewScope builds the scope of one block over tx.
func NewScope(c *cache.Cache, tx Tx, logger *zap.Logger) *Scope {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scope{Cache: c, Tx: tx, Logger: logger}
}

// State returns the cached process-wide state.
func (s *Scope) State(ctx context.Context) (*model.AppState, error) {
	return s.Cache.GetState(ctx, s.Tx)
}

// SaveState writes the cached state to the pending transaction.
func (s *Scope) SaveState(ctx context.Context) error {
	state, err := s.State(ctx)
	if err != nil {
		return err
	}
	return s.Tx.PutState(ctx, state)
}

// Protocol returns the stored protocol or a fresh one with weight 0 built
// from constants.
func (s *Scope) Protocol(ctx context.Context, code string, constants model.Constants) (*model.Protocol, error) {
	p, err := s.Cache.GetProtocol(ctx, s.Tx, code)
	if errors.Is(err, model.ErrNotFound) {
		return &model.Protocol{Code: code, Constants: constants}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load protocol %s: %w", code, err)
	}
	return p, nil
}

// StoredProtocol returns a protocol that must already exist.
func (s *Scope) StoredProtocol(ctx context.Context, code string) (*model.Protocol, error) {
	p, err := s.Cache.GetProtocol(ctx, s.Tx, code)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("protocol %s: %w", code, ErrMissingEntity)
	}
	if err != nil {
		return nil, fmt.Errorf("load protocol %s: %w", code, err)
	}
	return p, nil
}

// SaveProtocol writes p and keeps it cached.
func (s *Scope) SaveProtocol(ctx context.Context, p *model.Protocol) error {
	if err := s.Tx.PutProtocol(ctx, p); err != nil {
		return err
	}
	s.Cache.AddProtocol(p)
	return nil
}

// RemoveProtocol deletes p from the transaction and the cache.
func (s *Scope) RemoveProtocol(ctx context.Context, p *model.Protocol) error {
	if err := s.Tx.DeleteProtocol(ctx, p.Code); err != nil {
		return err
	}
	s.Cache.RemoveProtocol(p)
	return nil
}

// Block returns the applied block at level or ErrMissingEntity.
func (s *Scope) Block(ctx context.Context, level int64) (*model.Block, error) {
	b, err := s.Cache.GetBlock(ctx, s.Tx, level)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("block %d: %w", level, ErrMissingEntity)
	}
	if err != nil {
		return nil, fmt.Errorf("load block %d: %w", level, err)
	}
	return b, nil
}

// SaveBlock writes b and keeps it cached.
func (s *Scope) SaveBlock(ctx context.Context, b *model.Block) error {
	if err := s.Tx.PutBlock(ctx, b); err != nil {
		return err
	}
	s.Cache.AddBlock(b)
	return nil
}

// RemoveBlock deletes b from the transaction and the cache.
func (s *Scope) RemoveBlock(ctx context.Context, b *model.Block) error {
	if err := s.Tx.DeleteBlock(ctx, b.Level); err != nil {
		return err
	}
	s.Cache.RemoveBlock(b)
	return nil
}

// Account returns the account with id or ErrMissingEntity.
func (s *Scope) Account(ctx context.Context, id int64) (model.Account, error) {
	a, err := s.Cache.GetAccount(ctx, s.Tx, id)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("account %d: %w", id, ErrMissingEntity)
	}
	if err != nil {
		return nil, fmt.Errorf("load account %d: %w", id, err)
	}
	return a, nil
}

// FindAccount returns the account with address or model.ErrNotFound.
func (s *Scope) FindAccount(ctx context.Context, address string) (model.Account, error) {
	a, err := s.Cache.GetAccountByAddress(ctx, s.Tx, address)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("load account %s: %w", address, err)
	}
	return a, err
}

// AccountByAddress returns an account that must already exist.
func (s *Scope) AccountByAddress(ctx context.Context, address string) (model.Account, error) {
	a, err := s.FindAccount(ctx, address)
	if errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("account %s: %w", address, ErrMissingEntity)
	}
	return a, err
}

// Delegate returns the registered delegate with address.
func (s *Scope) Delegate(ctx context.Context, address string) (*model.Delegate, error) {
	a, err := s.AccountByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	d, ok := a.(*model.Delegate)
	if !ok {
		return nil, fmt.Errorf("account %s is a %s, not a delegate: %w", address, a.Kind(), ErrMalformedBlock)
	}
	return d, nil
}

// DelegateByID returns the registered delegate with id.
func (s *Scope) DelegateByID(ctx context.Context, id int64) (*model.Delegate, error) {
	a, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	d, ok := a.(*model.Delegate)
	if !ok {
		return nil, fmt.Errorf("account %d is a %s, not a delegate: %w", id, a.Kind(), ErrMissingEntity)
	}
	return d, nil
}

// SaveAccount writes a and caches it under its id and address.
func (s *Scope) SaveAccount(ctx context.Context, a model.Account) error {
	if err := s.Tx.PutAccount(ctx, a); err != nil {
		return err
	}
	s.Cache.AddAccount(a)
	return nil
}

// RemoveAccount deletes a from the transaction and the cache.
func (s *Scope) RemoveAccount(ctx context.Context, a model.Account) error {
	if err := s.Tx.DeleteAccount(ctx, a); err != nil {
		return err
	}
	s.Cache.RemoveAccount(a)
	return nil
}

// Stake moves delta of staking balance to the delegate of account. A
// delegate's own balance counts toward its staking balance but not toward its
// delegated balance. Accounts without a delegate are left untouched.
func (s *Scope) Stake(ctx context.Context, account model.Account, delta int64) error {
	base := account.Base()
	if base.DelegateID == nil || delta == 0 {
		return nil
	}
	d, err := s.DelegateByID(ctx, *base.DelegateID)
	if err != nil {
		return err
	}
	if d.StakingBalance, err = safe.Add(d.StakingBalance, delta); err != nil {
		return fmt.Errorf("staking balance of %s: %w", d.Address, err)
	}
	if d.ID != base.ID {
		if d.DelegatedBalance, err = safe.Add(d.DelegatedBalance, delta); err != nil {
			return fmt.Errorf("delegated balance of %s: %w", d.Address, err)
		}
	}
	return s.SaveAccount(ctx, d)
}
