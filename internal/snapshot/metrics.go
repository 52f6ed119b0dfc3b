package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// snapshotOps counts store operations by kind and result.
	snapshotOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cellundo_snapshot_ops_total",
		Help: "Snapshot store operations by operation and result",
	}, []string{"op", "result"})

	// snapshotBytes tracks stored payload sizes after compression.
	snapshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cellundo_snapshot_bytes",
		Help:    "Size of saved snapshot payloads in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 10),
	})

	// snapshotLive tracks handles with a non-zero reference count.
	snapshotLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cellundo_snapshot_live_handles",
		Help: "Snapshot handles currently referenced",
	})
)

func observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	snapshotOps.WithLabelValues(op, result).Inc()
}
