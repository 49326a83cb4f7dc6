//go:build e2e

package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient reads back what the summary sinks wrote during the E2E tests.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// SummaryFields returns the latest ctr_summary fields of one scope and cycle.
func (c *InfluxClient) SummaryFields(ctx context.Context, scope, cycle string) (map[string]float64, error) {
	flux := fmt.Sprintf(`from(bucket:%q)
  |> range(start: -1h)
  |> filter(fn: (r) => r._measurement == "ctr_summary" and r.scope == %q and r.cycle == %q)
  |> last()`, c.bucket, scope, cycle)
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return nil, err
	}
	defer res.Close()
	out := map[string]float64{}
	for res.Next() {
		rec := res.Record()
		if v, ok := rec.Value().(float64); ok {
			out[rec.Field()] = v
		}
	}
	return out, res.Err()
}

func (c *InfluxClient) Close() { c.client.Close() }
