package metrics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ctr/core/factory"
	metrics "github.com/kilianp07/ctr/core/metrics"
	_ "github.com/kilianp07/ctr/infra/metrics"
)

func TestSinkTypes(t *testing.T) {
	types := metrics.SinkTypes()
	for _, want := range []string{"impact", "influx", "mqtt", "nop", "prometheus"} {
		assert.Contains(t, types, want)
	}
}

/*
TestNewMetricsSink covers the shapes NewMetricsSink returns.

	Cases:
	- no config -> NopSink
	- one config -> the sink itself
	- two configs -> MultiSink
	- a failing entry names its index
*/
func TestNewMetricsSink(t *testing.T) {
	s, err := metrics.NewMetricsSink(nil)
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "NOP"}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}})
	require.NoError(t, err)
	m, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "expected MultiSink, got %T", s)
	assert.Len(t, m.Sinks, 2)

	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "graphite"}})
	assert.ErrorContains(t, err, "sink 1")
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, metrics.Config{PrometheusPort: "9090"}.Validate())
	assert.NoError(t, metrics.Config{PrometheusPort: "127.0.0.1:9090"}.Validate())
	assert.Error(t, metrics.Config{Sinks: []factory.ModuleConfig{{}}}.Validate())
	assert.Equal(t, ":9090", metrics.Config{PrometheusPort: "9090"}.PromAddr())
	assert.Equal(t, "", metrics.Config{}.PromAddr())
}
