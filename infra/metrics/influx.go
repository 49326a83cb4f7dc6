package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/ctr/core/metrics"
	"github.com/kilianp07/ctr/core/model"
	"github.com/kilianp07/ctr/infra/logger"
)

// InfluxSink writes summary reports to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSummary writes one ctr_summary point per scope and cycle, with one
// field per available metric.
func (s *InfluxSink) RecordSummary(ev coremetrics.SummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, p := range summaryPoints(ev) {
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func summaryPoints(ev coremetrics.SummaryEvent) []*write.Point {
	type key struct {
		scope model.Scope
		cycle model.Cycle
	}
	var order []key
	points := map[key]*write.Point{}
	for _, p := range coremetrics.Points(ev.Report) {
		k := key{p.Scope, p.Cycle}
		pt, ok := points[k]
		if !ok {
			pt = write.NewPointWithMeasurement("ctr_summary").
				AddTag("scope", string(p.Scope)).
				AddTag("cycle", string(p.Cycle)).
				AddTag("report_id", ev.ReportID).
				SetTime(ev.Time)
			points[k] = pt
			order = append(order, k)
		}
		pt.AddField(p.Metric, round6(p.Value))
	}
	out := make([]*write.Point, 0, len(order))
	for _, k := range order {
		out = append(out, points[k])
	}
	return out
}

// RecordDatasetLoad persists the result of a dataset load.
func (s *InfluxSink) RecordDatasetLoad(ev coremetrics.DatasetLoadEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("dataset_load").
		AddTag("source", ev.Source).
		AddField("records", ev.Records).
		AddField("issues", ev.Issues).
		AddField("duration_ms", round6(ev.Duration.Seconds()*1000)).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
