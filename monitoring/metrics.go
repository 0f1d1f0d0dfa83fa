package monitoring

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// MetricType represents different types of metrics.
type MetricType int

const (
	Counter MetricType = iota
	Gauge
	Histogram
)

func (t MetricType) String() string {
	switch t {
	case Counter:
		return "counter"
	case Gauge:
		return "gauge"
	case Histogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Metric describes a registered metric.
type Metric struct {
	Name        string
	Type        MetricType
	Description string
}

// MetricValue is one observation.
type MetricValue struct {
	Value     float64
	Timestamp time.Time
	Labels    map[string]string
}

// Registry stores metrics for the lifetime of one process.
type Registry struct {
	metrics map[string]Metric
	values  map[string][]MetricValue
	mu      sync.RWMutex
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
		values:  make(map[string][]MetricValue),
		now:     time.Now,
	}
}

func (r *Registry) Register(metric Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metrics[metric.Name] = metric
}

// Add records a counter increment or histogram observation. Values for
// unregistered metrics and gauges are ignored.
func (r *Registry) Add(name string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type != Gauge {
		r.values[name] = append(r.values[name], MetricValue{
			Value:     value,
			Timestamp: r.now(),
			Labels:    labels,
		})
	}
}

// Set replaces the value of a gauge.
func (r *Registry) Set(name string, value float64, labels map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if metric, ok := r.metrics[name]; ok && metric.Type == Gauge {
		r.values[name] = []MetricValue{{
			Value:     value,
			Timestamp: r.now(),
			Labels:    labels,
		}}
	}
}

// Total sums every value recorded for name.
func (r *Registry) Total(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, v := range r.values[name] {
		total += v.Value
	}
	return total
}

// Metric returns the registration of name.
func (r *Registry) Metric(name string) (Metric, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metrics[name]
	return m, ok
}

// Names returns the registered metric names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.metrics))
}

// GetMetrics returns a copy of every recorded value.
func (r *Registry) GetMetrics() map[string][]MetricValue {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]MetricValue)
	for name, values := range r.values {
		result[name] = append([]MetricValue{}, values...)
	}
	return result
}
