package syncer

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/cache"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/encoding"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols/initiator"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols/proto1"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/repository/badger"
)

var errConflict = errors.New("transaction conflict")

// testStore adapts the badger store and can fail a number of commits.
type testStore struct {
	*badger.Store
	failCommits int
}

func (s *testStore) Begin(ctx context.Context) Tx {
	return &testTx{Tx: s.Store.Begin(ctx), store: s}
}

type testTx struct {
	*badger.Tx
	store *testStore
}

func (t *testTx) Commit(ctx context.Context) (model.ChangeSet, error) {
	if t.store.failCommits > 0 {
		t.store.failCommits--
		t.Tx.Discard()
		return model.ChangeSet{}, errConflict
	}
	return t.Tx.Commit(ctx)
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	s, err := badger.Open("", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &testStore{Store: s}
}

func newTestRegistry(t *testing.T) *protocols.Registry {
	t.Helper()
	r, err := protocols.NewRegistry(initiator.New(zap.NewNop()),
		protocols.Registration{Code: proto1.Code, Handler: proto1.New(zap.NewNop())})
	require.NoError(t, err)
	return r
}

func anyMetrics(ctrl *gomock.Controller) *MockMetrics {
	m := NewMockMetrics(ctrl)
	m.EXPECT().ObserveApply(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().ObserveRevert(gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().ObserveFetch(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	m.EXPECT().SetLevel(gomock.Any()).AnyTimes()
	m.EXPECT().SetMirrorBacklog(gomock.Any()).AnyTimes()
	return m
}

type fixture struct {
	store    *testStore
	source   *MockSource
	mirror   *MockMirror
	metrics  *MockMetrics
	syncer   *Syncer
	sleeps   []time.Duration
	registry Registry
}

func newFixture(t *testing.T, ctrl *gomock.Controller, metrics *MockMetrics, mirror *MockMirror, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		store:    newTestStore(t),
		source:   NewMockSource(ctrl),
		mirror:   mirror,
		metrics:  metrics,
		registry: newTestRegistry(t),
	}
	c, err := cache.New(0, 0)
	require.NoError(t, err)

	if cfg.RetryBase == 0 {
		cfg.RetryBase = time.Millisecond
	}
	var m Mirror
	if mirror != nil {
		m = mirror
	}
	s, err := New(f.store, c, f.registry, f.source, m, metrics, zap.NewNop(), cfg)
	require.NoError(t, err)
	s.sleep = func(_ context.Context, d time.Duration) error {
		f.sleeps = append(f.sleeps, d)
		return nil
	}
	f.syncer = s
	return f
}

func (f *fixture) state(t *testing.T) model.AppState {
	t.Helper()
	s, err := f.syncer.head(context.Background())
	require.NoError(t, err)
	return *s
}

var testConstants = model.Constants{
	BlocksPerCycle:        4,
	BlocksPerVotingPeriod: 8,
	PreservedCycles:       1,
	TokensPerRoll:         1_000_000,
	BlockReward:           10,
	BlockDeposit:          100,
}

var genesisTime = time.Date(2018, 6, 30, 17, 39, 57, 0, time.UTC)

func mustEncode(p encoding.Prefix, payload []byte) string {
	s, err := encoding.Encode(p, payload)
	if err != nil {
		panic(err)
	}
	return s
}

func testAddress(seed byte) string {
	return mustEncode(encoding.PrefixTz1, bytes.Repeat([]byte{seed}, 20))
}

func testHash(level int64, branch byte) string {
	payload := make([]byte, 32)
	binary.BigEndian.PutUint64(payload, uint64(level))
	payload[8] = branch
	return mustEncode(encoding.PrefixBlock, payload)
}

var (
	alice = testAddress(1)
	bob   = testAddress(2)
	carol = testAddress(3)
)

// testBlock builds the block at level on branch whose parent sits on parent.
func testBlock(level int64, branch, parent byte, ops ...model.RawOperation) *model.RawBlock {
	constants := testConstants
	raw := &model.RawBlock{
		Level:       level,
		Hash:        testHash(level, branch),
		Predecessor: testHash(level-1, parent),
		Protocol:    proto1.Code,
		Header:      model.RawHeader{Timestamp: genesisTime.Add(time.Duration(level) * time.Minute)},
		Metadata: model.RawMetadata{
			Baker:        alice,
			Protocol:     proto1.Code,
			NextProtocol: proto1.Code,
			Constants:    &constants,
		},
		Operations: ops,
	}
	switch level {
	case protocols.GenesisLevel:
		raw.Protocol = initiator.Code
		raw.Metadata = model.RawMetadata{Protocol: initiator.Code, NextProtocol: proto1.Code}
	case protocols.GenesisLevel + 1:
		raw.Bootstrap = []model.RawBootstrapAccount{
			{Address: alice, PublicKey: "edpkalice", Balance: 2_000_000, Delegate: alice},
			{Address: bob, PublicKey: "edpkbob", Balance: 1_000_000, Delegate: bob},
		}
	}
	return raw
}

func applyChain(t *testing.T, s *Syncer, blocks ...*model.RawBlock) {
	t.Helper()
	for _, b := range blocks {
		require.NoError(t, s.ApplyBlock(context.Background(), b))
	}
}
