package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

var (
	syncerApplyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "apply_total",
		Help:      "Count of block apply attempts.",
	}, []string{"network", "status"})

	syncerApplyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "apply_duration_seconds",
		Help:      "Duration of applying one block, retries included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	syncerApplyOperations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "apply_operations",
		Help:      "Number of operations per applied block.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"network"})

	syncerRevertTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "revert_total",
		Help:      "Count of block revert attempts.",
	}, []string{"network", "status"})

	syncerRevertDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "revert_duration_seconds",
		Help:      "Duration of reverting one block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	syncerFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "fetch_total",
		Help:      "Count of block window fetches.",
	}, []string{"network", "status"})

	syncerFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "fetch_duration_seconds",
		Help:      "Duration of fetching a block window.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	syncerFetchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "fetch_size",
		Help:      "Number of blocks per fetched window.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"network"})

	syncerForksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "forks_total",
		Help:      "Count of detected forks.",
	}, []string{"network"})

	syncerLevel = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "level",
		Help:      "Level of the last applied block.",
	}, []string{"network"})

	syncerMirrorBacklog = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_syncer",
		Name:      "mirror_backlog",
		Help:      "Change sets committed locally and not yet mirrored.",
	}, []string{"network"})
)

// Syncer tracks metrics for the Tezos synchronization engine.
type Syncer struct {
	network model.Network
}

// NewSyncer constructs a Syncer with defaults.
func NewSyncer(network model.Network) *Syncer {
	if network == "" {
		network = "unknown"
	}
	return &Syncer{network: network}
}

// ObserveApply records one ApplyBlock outcome.
func (m Syncer) ObserveApply(err error, operations int, started time.Time) {
	status := statusOf(err)
	syncerApplyTotal.WithLabelValues(string(m.network), status).Inc()
	syncerApplyDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
	if err == nil {
		syncerApplyOperations.WithLabelValues(string(m.network)).Observe(float64(operations))
	}
}

// ObserveRevert records one RevertBlock outcome.
func (m Syncer) ObserveRevert(err error, started time.Time) {
	status := statusOf(err)
	syncerRevertTotal.WithLabelValues(string(m.network), status).Inc()
	syncerRevertDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
}

// ObserveFetch records a prefetch of blocks from the node.
func (m Syncer) ObserveFetch(err error, blocks int, started time.Time) {
	status := statusOf(err)
	syncerFetchTotal.WithLabelValues(string(m.network), status).Inc()
	syncerFetchDuration.WithLabelValues(string(m.network), status).Observe(time.Since(started).Seconds())
	syncerFetchSize.WithLabelValues(string(m.network)).Observe(float64(blocks))
}

// ObserveFork counts a detected fork.
func (m Syncer) ObserveFork() {
	syncerForksTotal.WithLabelValues(string(m.network)).Inc()
}

// SetLevel publishes the current sync head.
func (m Syncer) SetLevel(level int64) {
	syncerLevel.WithLabelValues(string(m.network)).Set(float64(level))
}

// SetMirrorBacklog publishes the number of pending change sets.
func (m Syncer) SetMirrorBacklog(n int) {
	syncerMirrorBacklog.WithLabelValues(string(m.network)).Set(float64(n))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
