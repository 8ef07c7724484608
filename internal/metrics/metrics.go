// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmergencyRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relief_emergency_requests_total",
		Help: "Emergency requests accepted, by category and urgency.",
	}, []string{"category", "urgency"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relief_volunteer_notifications_total",
		Help: "Volunteer alert deliveries, by result.",
	}, []string{"result"})

	MatchedVolunteers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "relief_matched_volunteers",
		Help:    "Volunteers matched per emergency request.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
	})

	FeedFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relief_feed_fetches_total",
		Help: "Disaster feed fetches, by source and result.",
	}, []string{"source", "result"})

	FeedCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relief_feed_cache_total",
		Help: "Disaster cache lookups, by outcome (hit, miss, stale).",
	}, []string{"outcome"})

	DisasterRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relief_disaster_records",
		Help: "Records in the latest aggregated disaster snapshot.",
	})
)
