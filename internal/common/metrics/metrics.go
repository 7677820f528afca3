// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransportRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remoteflow_transport_requests_total",
			Help: "Total number of transport operations by outcome",
		},
		[]string{"operation", "status"},
	)

	TransportBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remoteflow_transport_bytes_total",
			Help: "Total bytes moved over the transport",
		},
		[]string{"direction"},
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remoteflow_job_duration_seconds",
			Help:    "Duration of remote job execution from submit to terminal event",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)

	JobOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remoteflow_job_outcomes_total",
			Help: "Terminal job outcomes by state",
		},
		[]string{"state"},
	)

	ArtifactFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remoteflow_artifact_failures_total",
			Help: "Artifact downloads or decodes that were skipped",
		},
		[]string{"kind"},
	)
)
