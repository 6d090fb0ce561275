package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	rpcFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suil",
			Subsystem: "rpc",
			Name:      "frames_total",
			Help:      "Frames sent or received by the framer.",
		},
		[]string{"direction", "mode", "result"},
	)
	rpcBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suil",
			Subsystem: "rpc",
			Name:      "bytes_total",
			Help:      "Payload bytes moved by successful frames.",
		},
		[]string{"direction", "mode"},
	)
	merkleRoots = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suil",
			Subsystem: "merkle",
			Name:      "roots_total",
			Help:      "Merkle root computations.",
		},
		[]string{"result"},
	)
	adminRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suil",
			Subsystem: "admin",
			Name:      "http_requests_total",
			Help:      "Requests served by the admin endpoint.",
		},
		[]string{"node", "method", "path", "status"},
	)
	adminLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "suil",
			Subsystem: "admin",
			Name:      "http_request_duration_seconds",
			Help:      "Admin endpoint request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(rpcFrames, rpcBytes, merkleRoots, adminRequests, adminLatency)
	})
}

// RecordFrame counts one framer call. Bytes are only added for successes.
func RecordFrame(direction, mode, result string, bytes int) {
	RegisterMetrics()
	rpcFrames.WithLabelValues(direction, mode, result).Inc()
	if result == "ok" && bytes > 0 {
		rpcBytes.WithLabelValues(direction, mode).Add(float64(bytes))
	}
}

func RecordRoot(result string) {
	RegisterMetrics()
	merkleRoots.WithLabelValues(result).Inc()
}

func RecordHTTPRequest(node, method, path string, status int, elapsed time.Duration) {
	RegisterMetrics()
	adminRequests.WithLabelValues(node, method, path, strconv.Itoa(status)).Inc()
	adminLatency.WithLabelValues(node, method, path).Observe(elapsed.Seconds())
}
