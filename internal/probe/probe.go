package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const defaultTimeout = 10 * time.Second

// Metric families sampled from the target.
const (
	metricCPUSeconds     = "process_cpu_seconds_total"
	metricResidentMemory = "process_resident_memory_bytes"
	metricOpenFDs        = "process_open_fds"
	metricHTTPRequests   = "http_requests_total"
)

// Snapshot is one sample of the target server's process metrics.
// Counter fields hold raw totals; Diff derives per-run deltas.
type Snapshot struct {
	At time.Time `json:"at"`

	CPUSeconds          float64 `json:"cpu_seconds_total"`
	ResidentMemoryBytes float64 `json:"resident_memory_bytes"`
	OpenFDs             float64 `json:"open_fds"`
	HTTPRequestsTotal   float64 `json:"http_requests_total"`
}

// Delta is the change between two snapshots taken around a run.
type Delta struct {
	Elapsed time.Duration `json:"elapsed"`

	CPUSeconds        float64 `json:"cpu_seconds"`
	MemoryGrowthBytes float64 `json:"memory_growth_bytes"`
	OpenFDsGrowth     float64 `json:"open_fds_growth"`
	HTTPRequests      float64 `json:"http_requests"`
}

// Diff returns the change from before to after. When a counter went
// backwards the target restarted mid-run, so only the post-restart
// accumulation is counted. Gauges keep their sign.
func Diff(before, after Snapshot) Delta {
	return Delta{
		Elapsed:           after.At.Sub(before.At),
		CPUSeconds:        counterDelta(before.CPUSeconds, after.CPUSeconds),
		MemoryGrowthBytes: after.ResidentMemoryBytes - before.ResidentMemoryBytes,
		OpenFDsGrowth:     after.OpenFDs - before.OpenFDs,
		HTTPRequests:      counterDelta(before.HTTPRequestsTotal, after.HTTPRequestsTotal),
	}
}

func counterDelta(before, after float64) float64 {
	if after < before {
		return after
	}
	return after - before
}

// Probe samples one Prometheus exposition endpoint.
type Probe struct {
	endpoint string
	client   *http.Client
}

// New returns a Probe for endpoint. timeout bounds each sample.
func New(endpoint string, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Probe{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the sampled URL.
func (p *Probe) Endpoint() string { return p.endpoint }

// Sample scrapes the endpoint and extracts the process metrics.
// Families absent from the exposition read as zero.
func (p *Probe) Sample(ctx context.Context) (Snapshot, error) {
	mfs, err := p.fetch(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("probe: sample %s: %w", p.endpoint, err)
	}
	return Snapshot{
		At:                  time.Now().UTC(),
		CPUSeconds:          sumFamily(mfs[metricCPUSeconds]),
		ResidentMemoryBytes: sumFamily(mfs[metricResidentMemory]),
		OpenFDs:             sumFamily(mfs[metricOpenFDs]),
		HTTPRequestsTotal:   sumFamily(mfs[metricHTTPRequests]),
	}, nil
}

func (p *Probe) fetch(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseExposition(resp.Body)
}

// parseExposition decodes a Prometheus text exposition into metric
// families. A partial result with a trailing parse warning still
// counts as success.
func parseExposition(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a family.
// Returns 0 if mf is nil (metric not present in the scrape).
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
