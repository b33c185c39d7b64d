package client

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateflow_events_dispatched_total",
		Help: "Gateway envelopes resolved and handed to a terminal handler.",
	}, []string{"event"})

	eventsDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateflow_events_dropped_total",
		Help: "Gateway envelopes dropped before reaching a terminal handler.",
	}, []string{"reason"})

	commandsExecuted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateflow_commands_total",
		Help: "Command invocations by terminal status.",
	}, []string{"command", "status"})

	commandDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateflow_command_duration_seconds",
		Help:    "Wall time spent routing and executing one command.",
		Buckets: prometheus.DefBuckets,
	}, []string{"command"})

	throttleRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateflow_throttle_rejections_total",
		Help: "Command invocations rejected by admission control.",
	}, []string{"command"})
)

var registerMetricsOnce sync.Once

func registerMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(
			eventsDispatched,
			eventsDropped,
			commandsExecuted,
			commandDuration,
			throttleRejections,
		)
	})
}
