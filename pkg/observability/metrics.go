package observability

import (
	"errors"

	"github.com/aretw0/nestcache/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid_key"
	OutcomeConfig   = "merge_configuration"
	OutcomeMismatch = "merge_type"
	OutcomeError    = "error"
)

// Metrics holds the collectors for cache mutations.
type Metrics struct {
	Operations *prometheus.CounterVec
	Merges     *prometheus.CounterVec
	Elements   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestcache_operations_total",
				Help: "Total number of cache mutations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		Merges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestcache_merges_total",
				Help: "Total number of successful merges by strategy",
			},
			[]string{"strategy"},
		),
		Elements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nestcache_merge_elements_total",
				Help: "Sequence elements processed by array merges",
			},
			[]string{"result"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Operations, m.Merges, m.Elements)
	}
	return m
}

// Hooks returns store hooks recording into m.
func (m *Metrics) Hooks() domain.Hooks {
	record := func(e *domain.ChangeEvent) {
		m.Operations.WithLabelValues(string(e.Type), outcome(e.Err)).Inc()
		if e.Err != nil || e.Type != domain.EventMerge {
			return
		}
		m.Merges.WithLabelValues(string(e.Strategy)).Inc()
		if e.Strategy == domain.StrategyArray {
			m.Elements.WithLabelValues("matched").Add(float64(e.Matched))
			m.Elements.WithLabelValues("appended").Add(float64(e.Appended))
		}
	}
	return domain.Hooks{OnPut: record, OnMerge: record}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidKey):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrMergeConfiguration):
		return OutcomeConfig
	case errors.Is(err, domain.ErrMergeType):
		return OutcomeMismatch
	default:
		return OutcomeError
	}
}
