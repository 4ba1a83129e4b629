package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(jobsSubmittedTotal, jobsFinishedTotal, batchSizes) }

var jobsSubmittedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "imagegen_jobs_submitted_total",
		Help: "Total number of generation jobs accepted for dispatch.",
	},
)

var jobsFinishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "imagegen_jobs_finished_total",
		Help: "Total number of generation jobs that reached a terminal state, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var batchSizes = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "imagegen_batch_size",
		Help:    "Distribution of accepted batch sizes.",
		Buckets: []float64{1, 2, 5, 10, 15, 20},
	},
)

func IncJobSubmitted() { jobsSubmittedTotal.Inc() }

func IncJobFinished(status string) {
	jobsFinishedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveBatchSize(n int) { batchSizes.Observe(float64(n)) }
