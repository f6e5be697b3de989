package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	locationsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surveyor_tracking",
		Subsystem: "ingestion",
		Name:      "locations_stored_total",
		Help:      "GPS samples persisted to storage.",
	})
	locationsDeduplicated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surveyor_tracking",
		Subsystem: "ingestion",
		Name:      "locations_deduplicated_total",
		Help:      "GPS samples accepted but skipped by the duplicate window.",
	})
	locationsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surveyor_tracking",
		Subsystem: "ingestion",
		Name:      "locations_rejected_total",
		Help:      "GPS samples rejected by validation.",
	})
	futureTimestamps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surveyor_tracking",
		Subsystem: "ingestion",
		Name:      "future_timestamps_total",
		Help:      "Accepted samples whose timestamp was unusually far in the future.",
	})
	broadcastFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "surveyor_tracking",
		Subsystem: "broadcast",
		Name:      "failures_total",
		Help:      "Live-location broadcasts that could not be delivered.",
	})
)

func init() {
	prometheus.MustRegister(
		locationsStored,
		locationsDeduplicated,
		locationsRejected,
		futureTimestamps,
		broadcastFailures,
	)
}

// RecordLocationStored counts a persisted GPS sample.
func RecordLocationStored() { locationsStored.Inc() }

// RecordLocationDeduplicated counts a sample suppressed by the dedup window.
func RecordLocationDeduplicated() { locationsDeduplicated.Inc() }

// RecordLocationRejected counts a sample that failed validation.
func RecordLocationRejected() { locationsRejected.Inc() }

// RecordFutureTimestamp counts a sample flagged for a future timestamp.
func RecordFutureTimestamp() { futureTimestamps.Inc() }

// RecordBroadcastFailure counts a failed live-location broadcast.
func RecordBroadcastFailure() { broadcastFailures.Inc() }
