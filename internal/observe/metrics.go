// Package observe instruments a graph with prometheus metrics and zap
// debug logging.
package observe

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trigraph"

// Metrics holds the collectors shared by every instrumented graph.
type Metrics struct {
	Calls   *prometheus.CounterVec
	Errors  *prometheus.CounterVec
	Yielded *prometheus.CounterVec
	Mutated *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered. Registering twice on the same registry reuses
// the collectors already there.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "accessor_calls_total",
			Help:      "Number of graph accessor calls.",
		}, []string{"accessor"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "accessor_errors_total",
			Help:      "Number of graph accessor calls that failed.",
		}, []string{"accessor"}),
		Yielded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "triples_yielded_total",
			Help:      "Number of triples returned by graph iterators.",
		}, []string{"accessor"}),
		Mutated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "graph",
			Name:      "triples_mutated_total",
			Help:      "Number of triples inserted or removed.",
		}, []string{"op"}),
	}
	if reg == nil {
		return m, nil
	}

	for _, c := range []**prometheus.CounterVec{&m.Calls, &m.Errors, &m.Yielded, &m.Mutated} {
		if err := reg.Register(*c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				return nil, err
			}
			*c = existing
		}
	}
	return m, nil
}
