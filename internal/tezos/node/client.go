// Package node fetches and decodes blocks from a Tezos node RPC endpoint.
package node

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/workerpool"
)

// ActivationLevel is the level whose context holds the bootstrap accounts.
const ActivationLevel = protocols.GenesisLevel + 1

const maxResponseSize = 64 << 20

// ErrStatus is returned for non-2xx node responses.
var ErrStatus = errors.New("unexpected node status")

// Config configures a Client.
type Config struct {
	URL            string
	RequestsPerSec int
	Timeout        time.Duration
	Workers        int
}

// Client is a rate limited Tezos node RPC client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter ratelimit.Limiter
	metrics Metrics
	logger  *zap.Logger
	workers int

	mu        sync.Mutex
	constants map[string]model.Constants
}

// New builds a Client.
func New(cfg Config, metrics Metrics, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("node url is required")
	}
	if metrics == nil {
		return nil, errors.New("node metrics is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		http:      &http.Client{Timeout: cfg.Timeout},
		limiter:   ratelimit.New(cfg.RequestsPerSec),
		metrics:   metrics,
		logger:    logger,
		workers:   cfg.Workers,
		constants: make(map[string]model.Constants),
	}, nil
}

// Head returns the level of the node head.
func (c *Client) Head(ctx context.Context) (int64, error) {
	var h headerDTO
	if err := c.get(ctx, "head", "/chains/main/blocks/head/header", &h); err != nil {
		return 0, err
	}
	return h.Level, nil
}

// Block fetches the block at level with its protocol constants, and the
// bootstrap accounts at ActivationLevel.
func (c *Client) Block(ctx context.Context, level int64) (*model.RawBlock, error) {
	var b blockDTO
	if err := c.get(ctx, "block", fmt.Sprintf("/chains/main/blocks/%d", level), &b); err != nil {
		return nil, err
	}
	raw := b.rawBlock()
	if raw.Level != level {
		return nil, fmt.Errorf("node returned level %d for %d", raw.Level, level)
	}
	if level <= protocols.GenesisLevel {
		return raw, nil
	}

	constants, err := c.protocolConstants(ctx, level, raw.Metadata.Protocol)
	if err != nil {
		return nil, err
	}
	raw.Metadata.Constants = &constants

	if level == ActivationLevel {
		if raw.Bootstrap, err = c.bootstrap(ctx, level); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func (c *Client) protocolConstants(ctx context.Context, level int64, protocol string) (model.Constants, error) {
	c.mu.Lock()
	cached, ok := c.constants[protocol]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	var dto constantsDTO
	if err := c.get(ctx, "constants", fmt.Sprintf("/chains/main/blocks/%d/context/constants", level), &dto); err != nil {
		return model.Constants{}, err
	}
	constants := dto.model()

	c.mu.Lock()
	c.constants[protocol] = constants
	c.mu.Unlock()
	c.logger.Info("protocol constants loaded", zap.String("protocol", protocol), zap.Int64("blocks_per_cycle", constants.BlocksPerCycle))
	return constants, nil
}

func (c *Client) bootstrap(ctx context.Context, level int64) ([]model.RawBootstrapAccount, error) {
	var addresses []string
	if err := c.get(ctx, "contracts", fmt.Sprintf("/chains/main/blocks/%d/context/contracts", level), &addresses); err != nil {
		return nil, err
	}
	accounts, err := workerpool.Map(ctx, c.workers, addresses, func(ctx context.Context, address string) (model.RawBootstrapAccount, error) {
		var dto contractDTO
		path := fmt.Sprintf("/chains/main/blocks/%d/context/contracts/%s", level, address)
		if err := c.get(ctx, "contract", path, &dto); err != nil {
			return model.RawBootstrapAccount{}, err
		}
		return model.RawBootstrapAccount{
			Address:  address,
			Balance:  int64(dto.Balance),
			Delegate: dto.Delegate,
		}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch bootstrap accounts: %w", err)
	}
	c.logger.Info("bootstrap accounts loaded", zap.Int("accounts", len(accounts)))
	return accounts, nil
}

func (c *Client) get(ctx context.Context, operation, path string, v any) (err error) {
	c.limiter.Take()
	started := time.Now()
	defer func() {
		c.metrics.Observe(operation, err, started)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("get %s: %w: %d %s", path, ErrStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err = decodeJSON(body, v); err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}
