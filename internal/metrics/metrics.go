// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TimerStarts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cronometro_timer_starts_total",
		Help: "Number of timers started, by stage.",
	}, []string{"stage"})

	TimerStops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cronometro_timer_stops_total",
		Help: "Number of timers stopped, by stage.",
	}, []string{"stage"})

	Approvals = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cronometro_approvals_total",
		Help: "Number of notes approved.",
	})

	Cancellations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cronometro_cancellations_total",
		Help: "Number of notes cancelled.",
	})

	PanelClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cronometro_panel_clients",
		Help: "Connected panel websocket clients.",
	})
)
