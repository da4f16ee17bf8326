package metrics

import "github.com/prometheus/client_golang/prometheus"

// Run results.
const (
	ResultSent         = "sent"
	ResultSkippedEmpty = "skipped_empty"
	ResultUnverified   = "unverified"
	ResultError        = "error"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifier_runs_total",
			Help: "Total number of notifier invocations by result.",
		},
		[]string{"result"},
	)

	OpenTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notifier_open_tasks",
			Help: "Number of open tasks in the most recent report.",
		},
	)

	MalformedRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_malformed_rows_total",
			Help: "Total number of task rows skipped because they could not be decoded or had a bad Due_Time.",
		},
	)

	VerificationRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifier_verification_requests_total",
			Help: "Total number of email identity verification requests issued.",
		},
	)
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(RunsTotal, OpenTasks, MalformedRowsTotal, VerificationRequestsTotal)
}

func RecordRun(result string) {
	RunsTotal.WithLabelValues(result).Inc()
}

func RecordOpenTasks(n int) {
	OpenTasks.Set(float64(n))
}

func RecordMalformedRow() {
	MalformedRowsTotal.Inc()
}

func RecordVerificationRequest() {
	VerificationRequestsTotal.Inc()
}
