// Package metrics wires prometheus instrumentation for the event store and
// materializer. A nil Registerer is accepted everywhere: metrics are still
// created and updated, just never exposed to a scrape endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registerer is a thin alias so callers needn't import prometheus directly.
type Registerer = prometheus.Registerer

// NewRegistry creates a fresh prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	if reg == nil {
		return nil
	}
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Store holds the event-store-facing counters and histograms.
type Store struct {
	AppendedEvents  prometheus.Counter
	AppendDuration  prometheus.Histogram
	HashMismatches  prometheus.Counter
	SequenceRejects prometheus.Counter
}

// NewStore builds and registers the event-store metrics under namespace.
func NewStore(namespace string, reg prometheus.Registerer) (*Store, error) {
	s := &Store{
		AppendedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_appended_total",
			Help:      "Number of events successfully appended to the store.",
		}),
		AppendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Latency of append calls.",
		}),
		HashMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hash_mismatches_total",
			Help:      "Number of hash-chain corruption errors detected on read.",
		}),
		SequenceRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_rejects_total",
			Help:      "Number of append calls rejected for a sequence gap or duplicate.",
		}),
	}
	if err := registerAll(reg, s.AppendedEvents, s.AppendDuration, s.HashMismatches, s.SequenceRejects); err != nil {
		return nil, err
	}
	return s, nil
}

// Materializer holds the materializer-facing counters.
type Materializer struct {
	MaterializeDuration prometheus.Histogram
	InvariantViolations prometheus.Counter
	SnapshotHits        prometheus.Counter
}

// NewMaterializer builds and registers the materializer metrics under namespace.
func NewMaterializer(namespace string, reg prometheus.Registerer) (*Materializer, error) {
	m := &Materializer{
		MaterializeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "materialize_duration_seconds",
			Help:      "Latency of materialize calls.",
		}),
		InvariantViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invariant_violations_total",
			Help:      "Number of materialize calls that failed an invariant check.",
		}),
		SnapshotHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_hits_total",
			Help:      "Number of materialize calls accelerated by a snapshot.",
		}),
	}
	if err := registerAll(reg, m.MaterializeDuration, m.InvariantViolations, m.SnapshotHits); err != nil {
		return nil, err
	}
	return m, nil
}
