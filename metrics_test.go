package winfilter

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	median := mustStatistic(t, Median, 3, 3, []int{1, 1}, false)
	opts := Options{Metrics: m}
	median.ApplyWithOptions(randomImage(5, 4, 13), opts)
	median.ApplyWithOptions(randomImage(2, 2, 14), opts)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FiltersApplied.WithLabelValues("[median]")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.PixelsProduced.WithLabelValues("[median]")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EmptyOutputs.WithLabelValues("[median]")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ApplyDuration))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.observe("x", 10, 0)

	m, err := NewMetrics(nil)
	require.NoError(t, err)
	m.observe("x", 10, 0)
	assert.Equal(t, 10.0, testutil.ToFloat64(m.PixelsProduced.WithLabelValues("x")))
}
