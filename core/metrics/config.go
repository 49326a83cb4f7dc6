package metrics

import (
	"fmt"
	"net"
	"strings"

	"github.com/kilianp07/ctr/core/factory"
)

// Config lists the metrics sinks and the address of the Prometheus
// endpoint. An empty PrometheusPort disables the endpoint.
type Config struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	PrometheusPort string                 `json:"prometheus_port"`
}

func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sink %d: missing type", i)
		}
	}
	if c.PrometheusPort != "" {
		if _, _, err := net.SplitHostPort(c.PromAddr()); err != nil {
			return fmt.Errorf("prometheus_port: %w", err)
		}
	}
	return nil
}

// PromAddr returns the listen address of the Prometheus endpoint. A bare
// port listens on every interface.
func (c Config) PromAddr() string {
	if c.PrometheusPort == "" || strings.Contains(c.PrometheusPort, ":") {
		return c.PrometheusPort
	}
	return ":" + c.PrometheusPort
}
