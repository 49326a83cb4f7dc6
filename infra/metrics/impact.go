package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	core "github.com/kilianp07/ctr/core/metrics"
)

// ImpactSink exposes the environmental impact estimates of each report entry.
type ImpactSink struct {
	factor  float64
	vmt     *prometheus.GaugeVec
	gallons *prometheus.GaugeVec
	co2     *prometheus.GaugeVec
}

// NewImpactSink creates a sink with Prometheus gauges registered on reg. A
// positive factor overrides the CO2 kg per mile used in the report.
func NewImpactSink(factor float64, reg prometheus.Registerer) (*ImpactSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &ImpactSink{factor: factor}
	var err error
	if s.vmt, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctr_annual_vmt_avoided",
		Help: "Estimated annual vehicle miles avoided since program start",
	}, []string{"scope", "cycle"})); err != nil {
		return nil, err
	}
	if s.gallons, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctr_fuel_gallons_saved",
		Help: "Estimated annual fuel saved since program start",
	}, []string{"scope", "cycle"})); err != nil {
		return nil, err
	}
	if s.co2, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctr_co2_avoided_kg",
		Help: "Estimated annual CO2 avoided since program start",
	}, []string{"scope", "cycle"})); err != nil {
		return nil, err
	}
	return s, nil
}

// RecordSummary updates the gauges of every entry with an estimate.
func (s *ImpactSink) RecordSummary(ev core.SummaryEvent) error {
	for _, e := range ev.Report.Entries {
		est := e.Impact.Estimate
		if est == nil {
			continue
		}
		scope, cycle := string(e.Scope), string(e.Cycle)
		s.vmt.WithLabelValues(scope, cycle).Set(est.AnnualVMTAvoided)
		s.gallons.WithLabelValues(scope, cycle).Set(est.FuelGallonsSaved)
		co2 := est.CO2KgAvoided
		if s.factor > 0 {
			co2 = est.CO2Avoided(s.factor)
		}
		s.co2.WithLabelValues(scope, cycle).Set(co2)
	}
	return nil
}
