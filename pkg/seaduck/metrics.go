package seaduck

import (
	stderrors "errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// newMetrics registers the statement collectors on reg. Collectors already
// registered by another Catalog sharing reg are reused.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	statements, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seaduck",
		Name:      "statements_total",
		Help:      "Statements issued to DuckDB, by statement kind and outcome.",
	}, []string{"kind", "outcome"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seaduck",
		Name:      "statement_duration_seconds",
		Help:      "Wall time of statements issued to DuckDB, including result materialization.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}

	return &metrics{statements: statements, duration: duration}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if stderrors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *metrics) observe(kind string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.statements.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(elapsed.Seconds())
}
