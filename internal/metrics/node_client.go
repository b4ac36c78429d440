package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

var (
	nodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_node",
		Name:      "requests_total",
		Help:      "Count of Tezos node RPC requests.",
	}, []string{"operation", "network", "status"})
	nodeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "tezos_node",
		Name:      "request_duration_seconds",
		Help:      "Duration of Tezos node RPC requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// NodeClient tracks metrics for RPC calls to a Tezos node.
type NodeClient struct {
	network model.Network
}

// NewNodeClient constructs a metrics collector for node calls.
func NewNodeClient(network model.Network) *NodeClient {
	if network == "" {
		network = "unknown"
	}
	return &NodeClient{network: network}
}

// Observe records a single RPC call outcome and duration.
func (m NodeClient) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	nodeRequestsTotal.WithLabelValues(operation, string(m.network), status).Inc()
	nodeRequestDuration.WithLabelValues(operation, string(m.network), status).Observe(time.Since(started).Seconds())
}
