package factory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	URL     string
	Timeout time.Duration
	Factor  float64
}

type sinkConf struct {
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
	Factor  float64       `json:"factor"`
}

func newSink(conf map[string]any) (*sink, error) {
	var c sinkConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sink{URL: c.URL, Timeout: c.Timeout, Factor: c.Factor}, nil
}

func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("Influx", newSink))

	s, err := reg.Create(ModuleConfig{Type: " influx ", Conf: map[string]any{
		"url":     "http://localhost:8086",
		"timeout": "5s",
		"factor":  "0.404",
	}})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8086", s.URL)
	assert.Equal(t, 5*time.Second, s.Timeout)
	assert.InDelta(t, 0.404, s.Factor, 1e-12)
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[*sink]()
	require.NoError(t, reg.Register("prometheus", newSink))
	require.NoError(t, reg.Register("influx", newSink))
	assert.Error(t, reg.Register("INFLUX", newSink), "duplicate")
	assert.Error(t, reg.Register("mqtt", nil), "nil factory")
	assert.Error(t, reg.Register(" ", newSink), "empty name")

	_, err := reg.Create(ModuleConfig{Type: "graphite"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownType))
	assert.Contains(t, err.Error(), "known: influx, prometheus")

	_, err = reg.Create(ModuleConfig{Type: "influx", Conf: map[string]any{"bukket": "ctr"}})
	assert.ErrorContains(t, err, "influx:")
}

func TestNames(t *testing.T) {
	reg := NewRegistry[int]()
	for _, n := range []string{"nop", "Impact", "mqtt"} {
		require.NoError(t, reg.Register(n, func(map[string]any) (int, error) { return 0, nil }))
	}
	assert.Equal(t, []string{"impact", "mqtt", "nop"}, reg.Names())
}
