package stake

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_submissions_total",
			Help: "Stake submissions by outcome (done or error kind)",
		},
		[]string{"outcome"},
	)
	submitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stake_submit_duration_seconds",
			Help:    "Wall-clock time of a stake submission attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(submissionsTotal)
	prometheus.MustRegister(submitDuration)
}
