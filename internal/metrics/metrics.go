package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orefwatch_poll_cycles_total",
		Help: "Completed poll cycles by outcome.",
	}, []string{"outcome"})

	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orefwatch_poll_cycle_duration_seconds",
		Help:    "Duration of a fetch-and-evaluate poll cycle.",
		Buckets: prometheus.DefBuckets,
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orefwatch_notifications_total",
		Help: "Alert notifications attempted per channel.",
	}, []string{"channel", "result"})
)
