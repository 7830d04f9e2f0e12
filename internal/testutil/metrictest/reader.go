// Package metrictest collects OpenTelemetry metrics in memory for assertions.
package metrictest

import (
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Reader wraps a manual reader and the provider it is registered with.
type Reader struct {
	reader   *sdkmetric.ManualReader
	provider *sdkmetric.MeterProvider
}

// New builds a provider backed by a manual reader; it is shut down on cleanup.
func New(t testing.TB) *Reader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return &Reader{reader: reader, provider: provider}
}

// Meter returns a meter from the recording provider.
func (r *Reader) Meter(name string) metric.Meter {
	return r.provider.Meter(name)
}

// HistogramCounts returns the number of recordings of the named histogram,
// grouped by the values of keys joined with "/".
func (r *Reader) HistogramCounts(t testing.TB, name string, keys ...attribute.Key) map[string]uint64 {
	t.Helper()
	out := map[string]uint64{}
	m, ok := r.find(t, name)
	if !ok {
		return out
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("metric %s is %T, not a float64 histogram", name, m.Data)
	}
	for _, dp := range hist.DataPoints {
		out[groupKey(dp.Attributes, keys)] += dp.Count
	}
	return out
}

// CounterValues returns the sums of the named int64 counter grouped like HistogramCounts.
func (r *Reader) CounterValues(t testing.TB, name string, keys ...attribute.Key) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	m, ok := r.find(t, name)
	if !ok {
		return out
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
	}
	for _, dp := range sum.DataPoints {
		out[groupKey(dp.Attributes, keys)] += dp.Value
	}
	return out
}

func (r *Reader) find(t testing.TB, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect metrics: %v", err)
	}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func groupKey(set attribute.Set, keys []attribute.Key) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		v, _ := set.Value(key)
		parts = append(parts, v.Emit())
	}
	return strings.Join(parts, "/")
}
