package mindflux

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/sky-flux/mindflux")

var (
	nextTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mindflux_next_total",
		Help: "Scheduling calls by the phase that produced the result",
	}, []string{"phase"})

	nextLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mindflux_next_duration_seconds",
		Help:    "Scheduling call latency",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	backtrackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mindflux_backtrack_total",
		Help: "History frames popped after exhausting every forward option",
	})
)
