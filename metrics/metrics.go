// Package metrics exports service table activity to Prometheus.
//
// A Collector implements di.Observer; install it with di.WithObserver.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sghaida/svctable/di"
)

// Collector counts table lookups, proxy wrapping and specialization failures.
type Collector struct {
	registry *prometheus.Registry

	lookups         *prometheus.CounterVec
	proxies         prometheus.Counter
	specializations *prometheus.CounterVec
}

var _ di.Observer = (*Collector)(nil)

// NewCollector creates a collector with its own registry.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "svctable"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "lookups_total",
			Help:      "TryGetService calls by outcome (hit, miss, specialized, aggregated)",
		},
		[]string{"outcome"},
	)

	c.proxies = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "proxies_total",
			Help:      "Registrations wrapped in a proxy",
		},
	)

	c.specializations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "specialization_failures_total",
			Help:      "Open generic registrations that could not be closed, by generic definition",
		},
		[]string{"definition"},
	)

	c.registry.MustRegister(c.lookups, c.proxies, c.specializations)
	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Lookups returns the lookup counter for outcome.
func (c *Collector) Lookups(outcome di.Outcome) prometheus.Counter {
	return c.lookups.WithLabelValues(outcome.String())
}

// Proxies returns the proxy counter.
func (c *Collector) Proxies() prometheus.Counter {
	return c.proxies
}

// SpecializationFailures returns the failure counter for a generic
// definition name.
func (c *Collector) SpecializationFailures(definition string) prometheus.Counter {
	return c.specializations.WithLabelValues(definition)
}

// ObserveLookup implements di.Observer.
func (c *Collector) ObserveLookup(_ di.Type, outcome di.Outcome) {
	c.lookups.WithLabelValues(outcome.String()).Inc()
}

// ObserveProxy implements di.Observer.
func (c *Collector) ObserveProxy(_, _ di.Type) {
	c.proxies.Inc()
}

// ObserveSpecializationFailure implements di.Observer. The label is the
// definition name, which keeps cardinality bounded by the number of
// registered generics.
func (c *Collector) ObserveSpecializationFailure(contract di.Type, _ error) {
	name := "unknown"
	if def := contract.Definition(); def != nil {
		name = def.Name()
	}
	c.specializations.WithLabelValues(name).Inc()
}
