package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsHandled counts queue messages by topic, event type and outcome.
	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_events_handled_total",
			Help: "Queue messages handled, by topic, event type and outcome",
		},
		[]string{"topic", "type", "outcome"},
	)

	// Redeliveries counts suspended messages that were retried.
	Redeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_redeliveries_total",
			Help: "Suspended messages redelivered on the same partition",
		},
		[]string{"topic"},
	)

	DeadLetters = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_dead_letters_total",
			Help: "Undecodable messages archived and acked",
		},
		[]string{"topic"},
	)

	FanoutSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_fanout_entries",
			Help:    "Timeline entries produced by one distributed feed event",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	BackfillEntries = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_backfill_entries",
			Help:    "Timeline entries inserted by one subscribe backfill",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	BackfillDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timeline_backfill_duration_seconds",
			Help:    "Wall time of one subscribe backfill",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 120},
		},
	)

	MembershipCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeline_membership_cache_lookups_total",
			Help: "Membership cache lookups by result (hit, miss, error)",
		},
		[]string{"kind", "result"},
	)
)
