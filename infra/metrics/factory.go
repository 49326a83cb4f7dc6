package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ctr/core/factory"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/infra/mqtt"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		// The listen address belongs to the HTTP server; PromSink only registers collectors.
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("impact", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			EmissionFactor float64 `json:"emission_factor"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewImpactSink(c.EmissionFactor, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c mqtt.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		cli, err := mqtt.NewPahoClient(c)
		if err != nil {
			return nil, err
		}
		return NewMQTTSink(cli, c.TopicPrefix), nil
	})
}
