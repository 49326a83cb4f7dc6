package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/ctr/core/metrics"
)

// PromSink exposes the latest summary values and operational events as
// Prometheus metrics.
type PromSink struct {
	values      *prometheus.GaugeVec
	unavailable *prometheus.CounterVec
	reports     prometheus.Counter
	loadTime    *prometheus.HistogramVec
	records     *prometheus.GaugeVec
	loadErrors  *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// NewPromSink registers summary metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// that are already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.values, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctr_metric_value",
		Help: "Latest value of a CTR summary metric",
	}, []string{"scope", "cycle", "metric"})); err != nil {
		return nil, err
	}
	if s.unavailable, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ctr_unavailable_metrics_total",
		Help: "Metrics reported unavailable, by reason",
	}, []string{"scope", "metric", "reason"})); err != nil {
		return nil, err
	}
	if s.reports, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ctr_reports_total",
		Help: "Number of summary reports built",
	})); err != nil {
		return nil, err
	}
	if s.loadTime, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ctr_dataset_load_seconds",
		Help:    "Time spent loading the survey dataset",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.records, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctr_dataset_records",
		Help: "Number of survey records in the last loaded dataset",
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.loadErrors, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ctr_dataset_load_errors_total",
		Help: "Failed dataset loads",
	}, []string{"source"})); err != nil {
		return nil, err
	}
	if s.requests, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ctr_http_request_duration_seconds",
		Help:    "API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "status"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSummary sets one gauge per available metric and counts the
// unavailable ones.
func (s *PromSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	s.reports.Inc()
	for _, p := range coremetrics.Points(ev.Report) {
		s.values.WithLabelValues(string(p.Scope), string(p.Cycle), p.Metric).Set(p.Value)
	}
	for k, n := range coremetrics.Unavailable(ev.Report) {
		s.unavailable.WithLabelValues(k[0], k[1], k[2]).Add(float64(n))
	}
	return nil
}

// RecordDatasetLoad records load latency and size.
func (s *PromSink) RecordDatasetLoad(ev coremetrics.DatasetLoadEvent) error {
	s.loadTime.WithLabelValues(ev.Source).Observe(ev.Duration.Seconds())
	if ev.Error != "" {
		s.loadErrors.WithLabelValues(ev.Source).Inc()
		return nil
	}
	s.records.WithLabelValues(ev.Source).Set(float64(ev.Records))
	return nil
}

// RecordRequest records the API latency histogram.
func (s *PromSink) RecordRequest(ev coremetrics.RequestEvent) error {
	s.requests.WithLabelValues(ev.Route, strconv.Itoa(ev.Status)).Observe(ev.Duration.Seconds())
	return nil
}
