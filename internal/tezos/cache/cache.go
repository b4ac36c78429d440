// Package cache mirrors recently touched entities of the synchronization pass.
package cache

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

const minLimit = 1024

// Cache is owned by the single synchronization writer and is not safe for
// concurrent mutation. Entities returned are shared handles: mutating them
// without calling the matching Add hook and writing them to the pending
// transaction breaks read-your-writes for later commits.
type Cache struct {
	protocols map[string]*model.Protocol
	accounts  *lru.Cache[int64, model.Account]
	addresses *lru.Cache[string, int64]
	blocks    *lru.Cache[int64, *model.Block]
	state     *model.AppState
}

// New builds a Cache bounded to the given number of accounts and blocks.
func New(accountsLimit, blocksLimit int) (*Cache, error) {
	accountsLimit = max(accountsLimit, minLimit)
	blocksLimit = max(blocksLimit, minLimit)

	accounts, err := lru.New[int64, model.Account](accountsLimit)
	if err != nil {
		return nil, fmt.Errorf("create accounts cache: %w", err)
	}
	addresses, err := lru.New[string, int64](accountsLimit)
	if err != nil {
		return nil, fmt.Errorf("create addresses cache: %w", err)
	}
	blocks, err := lru.New[int64, *model.Block](blocksLimit)
	if err != nil {
		return nil, fmt.Errorf("create blocks cache: %w", err)
	}

	return &Cache{
		protocols: make(map[string]*model.Protocol),
		accounts:  accounts,
		addresses: addresses,
		blocks:    blocks,
	}, nil
}

// Reset drops every cached entity. The next lookups reload from the store.
func (c *Cache) Reset() {
	c.protocols = make(map[string]*model.Protocol)
	c.accounts.Purge()
	c.addresses.Purge()
	c.blocks.Purge()
	c.state = nil
}

// GetState returns the process-wide state, loading it once per run.
func (c *Cache) GetState(ctx context.Context, s Store) (*model.AppState, error) {
	if c.state != nil {
		return c.state, nil
	}
	state, err := s.State(ctx)
	if errors.Is(err, model.ErrNotFound) {
		state, err = &model.AppState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	c.state = state
	return state, nil
}

// GetProtocol returns the protocol instance for code. Repeated lookups return
// the same pointer until the protocol is removed or the cache is reset.
func (c *Cache) GetProtocol(ctx context.Context, s Store, code string) (*model.Protocol, error) {
	if p, ok := c.protocols[code]; ok {
		return p, nil
	}
	p, err := s.Protocol(ctx, code)
	if err != nil {
		return nil, err
	}
	c.protocols[code] = p
	return p, nil
}

func (c *Cache) AddProtocol(p *model.Protocol) {
	c.protocols[p.Code] = p
}

func (c *Cache) RemoveProtocol(p *model.Protocol) {
	delete(c.protocols, p.Code)
}

// GetAccount returns the account with id in its concrete variant.
func (c *Cache) GetAccount(ctx context.Context, s Store, id int64) (model.Account, error) {
	if a, ok := c.accounts.Get(id); ok {
		return a, nil
	}
	a, err := s.Account(ctx, id)
	if err != nil {
		return nil, err
	}
	c.AddAccount(a)
	return a, nil
}

// GetAccountByAddress returns the account with address in its concrete variant.
func (c *Cache) GetAccountByAddress(ctx context.Context, s Store, address string) (model.Account, error) {
	if id, ok := c.addresses.Get(address); ok {
		if a, ok := c.accounts.Get(id); ok {
			return a, nil
		}
	}
	a, err := s.AccountByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	c.AddAccount(a)
	return a, nil
}

// AddAccount caches a, replacing any other variant cached under the same id.
func (c *Cache) AddAccount(a model.Account) {
	base := a.Base()
	c.accounts.Add(base.ID, a)
	c.addresses.Add(base.Address, base.ID)
}

func (c *Cache) RemoveAccount(a model.Account) {
	base := a.Base()
	c.accounts.Remove(base.ID)
	c.addresses.Remove(base.Address)
}

// GetBlock returns the applied block at level.
func (c *Cache) GetBlock(ctx context.Context, s Store, level int64) (*model.Block, error) {
	if b, ok := c.blocks.Get(level); ok {
		return b, nil
	}
	b, err := s.Block(ctx, level)
	if err != nil {
		return nil, err
	}
	c.blocks.Add(level, b)
	return b, nil
}

func (c *Cache) AddBlock(b *model.Block) {
	c.blocks.Add(b.Level, b)
}

func (c *Cache) RemoveBlock(b *model.Block) {
	c.blocks.Remove(b.Level)
}
