// Package metrics provides a small builder for emitting named measurements
// as a single structured zerolog event. A run's counters and latencies land
// in the same log stream as everything else, one line per flush, so they can
// be grepped or piped into jq without a metrics backend.
package metrics

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
	UnitNone         = "None"
)

// metricDef holds the name, unit and value for a single metric.
type metricDef struct {
	Name  string
	Unit  string
	Value float64
}

// Recorder accumulates dimensions, metrics, and properties for a single flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per operation.
type Recorder struct {
	namespace  string
	logger     zerolog.Logger
	dimensions map[string]string
	metrics    map[string]metricDef
	properties map[string]interface{}
}

var (
	// defaultDimensions are attached to every Recorder created after SetDefaultDimension.
	defaultDimensions = make(map[string]string)
	defaultMu         sync.RWMutex
)

// SetDefaultDimension registers a dimension added to every new Recorder,
// e.g. the run ID of the active batch.
func SetDefaultDimension(key, value string) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if value == "" {
		delete(defaultDimensions, key)
		return
	}
	defaultDimensions[key] = value
}

// New creates a new Recorder with the given namespace, writing through the
// global zerolog logger.
func New(namespace string) *Recorder {
	r := &Recorder{
		namespace:  namespace,
		logger:     log.Logger,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		properties: make(map[string]interface{}),
	}
	defaultMu.RLock()
	for k, v := range defaultDimensions {
		r.dimensions[k] = v
	}
	defaultMu.RUnlock()
	return r
}

// WithLogger redirects the flush to logger.
func (r *Recorder) WithLogger(logger zerolog.Logger) *Recorder {
	r.logger = logger
	return r
}

// Dimension adds a dimension key-value pair.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a unit.
// Use the Unit* constants (UnitMilliseconds, UnitCount, UnitBytes, UnitNone).
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit, Value: value}
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the event.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush emits the collected values as one INFO event and is a no-op when no
// metric was recorded. After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return
	}

	evt := r.logger.Info().Str("namespace", r.namespace)

	if len(r.dimensions) > 0 {
		d := zerolog.Dict()
		for _, k := range sortedKeys(r.dimensions) {
			d = d.Str(k, r.dimensions[k])
		}
		evt = evt.Dict("dimensions", d)
	}

	values := zerolog.Dict()
	units := zerolog.Dict()
	for _, k := range sortedKeys(r.metrics) {
		m := r.metrics[k]
		values = values.Float64(m.Name, m.Value)
		units = units.Str(m.Name, m.Unit)
	}
	evt = evt.Dict("metrics", values).Dict("units", units)

	if len(r.properties) > 0 {
		evt = evt.Fields(r.properties)
	}

	evt.Msg("metrics")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
