package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(resultsSavedTotal) }

var resultsSavedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "imagegen_results_saved_total",
		Help: "Total number of result save attempts, labeled by outcome.",
	},
	[]string{"outcome"}, // 'saved', 'failed'
)

func IncSave(outcome string) {
	resultsSavedTotal.WithLabelValues(norm(outcome)).Inc()
}
