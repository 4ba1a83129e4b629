package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(genCallsLatencyMs) }

var genCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "imagegen_calls_latency_ms",
		Help:    "Upstream generation call latency distribution in milliseconds.",
		Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 16000, 30000, 60000},
	},
	[]string{"provider", "model", "success"},
)

func ObserveGeneration(provider, model string, latencyMs int, success bool) {
	genCallsLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
