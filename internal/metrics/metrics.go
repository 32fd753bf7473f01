// Package metrics exposes Prometheus collectors for ledger and workflow
// events. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/set-night/taskcoin/internal/domain"
)

const namespace = "taskcoin"

type Metrics struct {
	transitions     *prometheus.CounterVec
	coinsMoved      *prometheus.CounterVec
	partialFailures *prometheus.CounterVec
	httpRequests    *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_transitions_total",
			Help:      "Submission status transitions by target status.",
		}, []string{"status"}),
		coinsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coins_moved_total",
			Help:      "Absolute coin amounts moved through the ledger by kind.",
		}, []string{"kind"}),
		partialFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_partial_failures_total",
			Help:      "Coupled ledger operations where only one write was applied.",
		}, []string{"operation"}),
		httpRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	reg.MustRegister(m.transitions, m.coinsMoved, m.partialFailures, m.httpRequests)
	return m
}

func (m *Metrics) SubmissionTransitioned(status domain.SubmissionStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) CoinsMoved(kind string, amount int64) {
	if m == nil {
		return
	}
	if amount < 0 {
		amount = -amount
	}
	m.coinsMoved.WithLabelValues(kind).Add(float64(amount))
}

func (m *Metrics) PartialFailure(operation string) {
	if m == nil {
		return
	}
	m.partialFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
