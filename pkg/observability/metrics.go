package observability

import (
	"context"
	"errors"

	"github.com/aretw0/cadbridge/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "cadbridge"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Calls             *prometheus.CounterVec
	CallErrors        *prometheus.CounterVec
	CallDuration      *prometheus.HistogramVec
	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	CircuitRejections prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "host_calls_total",
			Help:      "Host method calls and property reads.",
		}, []string{"kind", "name"}),
		CallErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "host_call_errors_total",
			Help:      "Host calls that failed at the transport level.",
		}, []string{"name"}),
		CallDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "host_call_duration_seconds",
			Help:      "Duration of host calls.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"name"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Modelling operations by outcome.",
		}, []string{"operation", "status"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of modelling operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CircuitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "circuit_rejections_total",
			Help:      "Host calls rejected while the circuit breaker was open.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Calls, m.CallErrors, m.CallDuration,
		m.Operations, m.OperationDuration, m.CircuitRejections,
	}
}

// Hooks returns hooks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCallReturn: func(_ context.Context, e *domain.CallEvent) {
			m.Calls.WithLabelValues(string(e.Kind), e.Name).Inc()
			m.CallDuration.WithLabelValues(e.Name).Observe(e.Duration.Seconds())
			switch {
			case errors.Is(e.Err, domain.ErrCircuitOpen):
				m.CircuitRejections.Inc()
			case e.Err != nil:
				m.CallErrors.WithLabelValues(e.Name).Inc()
			}
		},
		OnOperationDone: func(_ context.Context, e *domain.OperationEvent) {
			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.Operations.WithLabelValues(e.Operation, status).Inc()
			m.OperationDuration.WithLabelValues(e.Operation).Observe(e.Duration.Seconds())
		},
	}
}
