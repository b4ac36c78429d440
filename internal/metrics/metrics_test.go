package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func delta(t *testing.T, collector prometheus.Collector, observe func()) float64 {
	t.Helper()

	before := testutil.ToFloat64(collector)
	observe()
	after := testutil.ToFloat64(collector)
	return after - before
}

func TestSyncerRecords(t *testing.T) {
	m := NewSyncer("")
	start := time.Now().Add(-time.Second)

	if inc := delta(t, syncerApplyTotal.WithLabelValues("unknown", "success"), func() {
		m.ObserveApply(nil, 3, start)
	}); inc != 1 {
		t.Fatalf("expected apply counter increment, got %v", inc)
	}
	if inc := delta(t, syncerApplyTotal.WithLabelValues("unknown", "error"), func() {
		m.ObserveApply(errors.New("boom"), 0, start)
	}); inc != 1 {
		t.Fatalf("expected apply error counter increment, got %v", inc)
	}
	if inc := delta(t, syncerRevertTotal.WithLabelValues("unknown", "success"), func() {
		m.ObserveRevert(nil, start)
	}); inc != 1 {
		t.Fatalf("expected revert counter increment, got %v", inc)
	}
	if inc := delta(t, syncerFetchTotal.WithLabelValues("unknown", "error"), func() {
		m.ObserveFetch(errors.New("timeout"), 4, start)
	}); inc != 1 {
		t.Fatalf("expected fetch error counter increment, got %v", inc)
	}
	if inc := delta(t, syncerForksTotal.WithLabelValues("unknown"), m.ObserveFork); inc != 1 {
		t.Fatalf("expected fork counter increment, got %v", inc)
	}

	m.SetLevel(42)
	if got := testutil.ToFloat64(syncerLevel.WithLabelValues("unknown")); got != 42 {
		t.Fatalf("level gauge = %v, want 42", got)
	}
	m.SetMirrorBacklog(2)
	if got := testutil.ToFloat64(syncerMirrorBacklog.WithLabelValues("unknown")); got != 2 {
		t.Fatalf("mirror backlog gauge = %v, want 2", got)
	}
}

func TestNodeClientRecords(t *testing.T) {
	m := NewNodeClient("mainnet")
	start := time.Now().Add(-200 * time.Millisecond)

	if inc := delta(t, nodeRequestsTotal.WithLabelValues("block", "mainnet", "success"), func() {
		m.Observe("block", nil, start)
	}); inc != 1 {
		t.Fatalf("expected node request counter increment, got %v", inc)
	}

	m.Observe("head", errors.New("oops"), start)
}

func TestClickhouseRepositoryRecords(t *testing.T) {
	m := NewClickhouseRepository()
	start := time.Now().Add(-50 * time.Millisecond)

	if inc := delta(t, clickhouseRepositoryRequestsTotal.WithLabelValues("apply_changes", "unknown", "error"), func() {
		m.Observe("apply_changes", "", errors.New("down"), start)
	}); inc != 1 {
		t.Fatalf("expected repository error counter increment, got %v", inc)
	}
	if inc := delta(t, clickhouseRepositoryRows.WithLabelValues("tezos_blocks", "ghostnet"), func() {
		m.ObserveRows("tezos_blocks", "ghostnet", 5)
	}); inc != 5 {
		t.Fatalf("expected 5 rows counted, got %v", inc)
	}
}
