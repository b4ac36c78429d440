package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/metrics"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/cache"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/node"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols/initiator"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols/proto1"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/repository/badger"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/repository/clickhouse"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/service/syncer"
)

type config struct {
	Network       model.Network `long:"network" env:"TEZOS_INDEXER_NETWORK" description:"network name" default:"mainnet"`
	NodeURL       string        `long:"node-url" env:"TEZOS_INDEXER_NODE_URL" description:"Tezos node RPC URL" default:"http://127.0.0.1:8732"`
	NodeRPS       int           `long:"node-rps" env:"TEZOS_INDEXER_NODE_RPS" description:"node requests per second" default:"20"`
	HTTPTimeout   time.Duration `long:"http-timeout" env:"TEZOS_INDEXER_HTTP_TIMEOUT" description:"HTTP timeout for node requests" default:"30s"`
	StorePath     string        `long:"store-path" env:"TEZOS_INDEXER_STORE_PATH" description:"badger directory" required:"true"`
	ClickhouseDSN string        `long:"clickhouse-dsn" env:"TEZOS_INDEXER_CLICKHOUSE_DSN" description:"ClickHouse DSN, mirror disabled when empty"`
	Workers       int           `long:"workers" env:"TEZOS_INDEXER_WORKERS" description:"concurrent block fetches" default:"8"`
	Prefetch      int           `long:"prefetch" env:"TEZOS_INDEXER_PREFETCH" description:"blocks fetched per window" default:"32"`
	AccountsCache int           `long:"accounts-cache" env:"TEZOS_INDEXER_ACCOUNTS_CACHE" description:"cached accounts" default:"100000"`
	BlocksCache   int           `long:"blocks-cache" env:"TEZOS_INDEXER_BLOCKS_CACHE" description:"cached blocks" default:"1024"`
	MaxForkDepth  int           `long:"max-fork-depth" env:"TEZOS_INDEXER_MAX_FORK_DEPTH" description:"blocks reverted before giving up on a fork" default:"60"`
	RevertTo      int64         `long:"revert-to" env:"TEZOS_INDEXER_REVERT_TO" description:"revert the store down to this level and exit" default:"-1"`
	MetricsAddr   string        `long:"metrics-addr" env:"TEZOS_INDEXER_METRICS_ADDR" description:"address for metrics server" default:":2112"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("tezos indexer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) (err error) {
	db, err := badger.Open(cfg.StorePath, logger.Named("badger"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	closers := []func() error{db.Close}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	c, err := cache.New(cfg.AccountsCache, cfg.BlocksCache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	registry, err := protocols.NewRegistry(
		initiator.New(logger.Named("initiator")),
		protocols.Registration{Code: proto1.Code, Handler: proto1.New(logger.Named("proto1"))},
	)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}

	client, err := node.New(node.Config{
		URL:            cfg.NodeURL,
		RequestsPerSec: cfg.NodeRPS,
		Timeout:        cfg.HTTPTimeout,
		Workers:        cfg.Workers,
	}, metrics.NewNodeClient(cfg.Network), logger.Named("node"))
	if err != nil {
		return fmt.Errorf("init node client: %w", err)
	}

	var mirror syncer.Mirror
	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, cfg.Network, metrics.NewClickhouseRepository())
		if err != nil {
			return fmt.Errorf("init repository: %w", err)
		}
		closers = append(closers, repo.Close)
		mirror = repo
	}

	svc, err := syncer.New(
		store{db},
		c,
		registry,
		client,
		mirror,
		metrics.NewSyncer(cfg.Network),
		logger.Named("syncer"),
		syncer.Config{
			Network:      cfg.Network,
			Workers:      cfg.Workers,
			Prefetch:     cfg.Prefetch,
			MaxForkDepth: cfg.MaxForkDepth,
		},
	)
	if err != nil {
		return fmt.Errorf("init syncer: %w", err)
	}

	if cfg.RevertTo >= 0 {
		logger.Info("reverting store", zap.Int64("level", cfg.RevertTo))
		if err := svc.RevertTo(ctx, cfg.RevertTo); err != nil {
			return fmt.Errorf("revert to %d: %w", cfg.RevertTo, err)
		}
		return svc.SyncMirror(ctx)
	}

	startMetricsServer(ctx, cfg.MetricsAddr, logger)
	return svc.Run(ctx)
}

// store narrows the badger transaction to the syncer's view of it.
type store struct {
	*badger.Store
}

func (s store) Begin(ctx context.Context) syncer.Tx {
	return s.Store.Begin(ctx)
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}
