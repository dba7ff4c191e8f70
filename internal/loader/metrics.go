package loader

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes recorded in the loads_total counter.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeParse     = "parse_error"
	OutcomeRemote    = "remote_error"
	OutcomeStale     = "stale"
	OutcomeCanceled  = "canceled"
)

// Metrics records load activity.
type Metrics struct {
	loads    *prometheus.CounterVec
	duration prometheus.Histogram
	rows     prometheus.Gauge
}

// NewMetrics creates load metrics and registers them with reg when non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plasmid",
			Subsystem: "loader",
			Name:      "loads_total",
			Help:      "Dataset loads by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plasmid",
			Subsystem: "loader",
			Name:      "load_duration_seconds",
			Help:      "Time from load start to commit.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		rows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plasmid",
			Subsystem: "loader",
			Name:      "dataset_rows",
			Help:      "Rows in the committed dataset.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.loads, m.duration, m.rows)
	}
	return m
}

func (m *Metrics) observe(outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
	if outcome != OutcomeStale {
		m.duration.Observe(took.Seconds())
	}
}

func (m *Metrics) setRows(n int) {
	if m == nil {
		return
	}
	m.rows.Set(float64(n))
}

// Outcome classifies a load error for metrics and logs.
func Outcome(err error) string {
	var (
		parse  *ParseError
		remote *RemoteError
	)
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.As(err, &remote):
		return OutcomeRemote
	case errors.As(err, &parse):
		return OutcomeParse
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		return OutcomeTransport
	}
}
