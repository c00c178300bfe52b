package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounterIncrement(t *testing.T) {
	r := NewRegistry()

	r.IncrementCounter("ingest_messages_total", map[string]string{"outcome": "created"}, "test")
	r.IncrementCounter("ingest_messages_total", map[string]string{"outcome": "created"}, "test")
	r.AddToCounter("ingest_messages_total", 3, map[string]string{"outcome": "rejected"}, "test")

	all := r.GetAllMetrics()
	counters := all["counters"].(map[string]*Metric)

	created := counters["ingest_messages_total_outcome:created"]
	require.NotNil(t, created)
	assert.Equal(t, float64(2), created.Value)

	rejected := counters["ingest_messages_total_outcome:rejected"]
	require.NotNil(t, rejected)
	assert.Equal(t, float64(3), rejected.Value)
}

func TestCounterWithoutLabels(t *testing.T) {
	r := NewRegistry()
	r.IncrementCounter("resolution_matches_total", nil, "test")

	counters := r.GetAllMetrics()["counters"].(map[string]*Metric)
	require.NotNil(t, counters["resolution_matches_total"])
	assert.Equal(t, float64(1), counters["resolution_matches_total"].Value)
}

func TestMetricKeyLabelOrder(t *testing.T) {
	a := metricKey("m", map[string]string{"x": "1", "y": "2"})
	b := metricKey("m", map[string]string{"y": "2", "x": "1"})
	assert.Equal(t, a, b)
}

func TestTimerRecords(t *testing.T) {
	r := NewRegistry()

	r.RecordTimer("op_duration", 10*time.Millisecond, nil, "test")
	r.RecordTimer("op_duration", 30*time.Millisecond, nil, "test")

	timers := r.GetAllMetrics()["timers"].(map[string]*TimerMetric)
	timer := timers["op_duration"]
	require.NotNil(t, timer)
	assert.Equal(t, int64(2), timer.Count)
	assert.Equal(t, float64(10), timer.Min)
	assert.Equal(t, float64(30), timer.Max)
	assert.Equal(t, float64(20), timer.Average)
}

func TestTimerPercentiles(t *testing.T) {
	r := NewRegistry()

	for i := 1; i <= 100; i++ {
		r.RecordTimer("op_duration", time.Duration(i)*time.Millisecond, nil, "test")
	}

	timers := r.GetAllMetrics()["timers"].(map[string]*TimerMetric)
	timer := timers["op_duration"]
	require.NotNil(t, timer)
	assert.InDelta(t, 96, timer.P95, 1)
	assert.InDelta(t, 100, timer.P99, 1)
}

func TestGaugeSet(t *testing.T) {
	r := NewRegistry()

	r.SetGauge("subscribers", 3, nil, "test")
	r.SetGauge("subscribers", 5, nil, "test")

	gauges := r.GetAllMetrics()["gauges"].(map[string]*Metric)
	require.NotNil(t, gauges["subscribers"])
	assert.Equal(t, float64(5), gauges["subscribers"].Value)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.IncrementCounter("concurrent_total", nil, "test")
				r.RecordTimer("concurrent_duration", time.Millisecond, nil, "test")
				r.SetGauge("concurrent_gauge", float64(j), nil, "test")
			}
		}()
	}
	wg.Wait()

	counters := r.GetAllMetrics()["counters"].(map[string]*Metric)
	assert.Equal(t, float64(1000), counters["concurrent_total"].Value)
}
