package k6

import (
	"math"
	"strings"
	"testing"
)

const sampleOutput = `{"type":"Metric","metric":"http_req_duration","data":{"type":"trend"}}
{"type":"Point","metric":"http_req_duration","data":{"min":12.5,"avg":340.2,"p(95)":890.7,"p(99)":1450.3,"max":2100.9}}
{"type":"Point","metric":"http_reqs","data":{"count":15000}}
{"type":"Point","metric":"http_req_failed","data":{"rate":0.002,"count":30}}
{"type":"Point","metric":"checks","data":{"rate":0.985}}
{"type":"Point","metric":"vus_max","data":{"value":200}}
{"type":"Point","metric":"iterations","data":{"count":7400}}
{"type":"Point","metric":"data_received","data":{"count":52428800}}
{"type":"Point","metric":"data_sent","data":{"count":1048576}}

not json at all
{"type":"Point","metric":"some_custom_metric","data":{"value":1}}
`

func TestParseMetrics(t *testing.T) {
	m, err := ParseMetrics(strings.NewReader(sampleOutput))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}

	if math.Abs(m.DurationP95Ms-890.7) > 1e-9 {
		t.Errorf("p95: got %g, want 890.7", m.DurationP95Ms)
	}
	if math.Abs(m.DurationMinMs-12.5) > 1e-9 || math.Abs(m.DurationMaxMs-2100.9) > 1e-9 {
		t.Errorf("min/max: got %g/%g", m.DurationMinMs, m.DurationMaxMs)
	}
	if m.TotalCount != 15000 || m.FailedCount != 30 {
		t.Errorf("counts: got total=%d failed=%d", m.TotalCount, m.FailedCount)
	}
	if math.Abs(m.FailedRate-0.002) > 1e-9 {
		t.Errorf("failed rate: got %g", m.FailedRate)
	}
	if math.Abs(m.ChecksRate-0.985) > 1e-9 {
		t.Errorf("checks rate: got %g", m.ChecksRate)
	}
	if m.VUsMax != 200 || m.Iterations != 7400 {
		t.Errorf("load metrics: got vus=%d iterations=%d", m.VUsMax, m.Iterations)
	}
	if m.DataReceivedBytes != 52428800 || m.DataSentBytes != 1048576 {
		t.Errorf("data transfer: got %d/%d", m.DataReceivedBytes, m.DataSentBytes)
	}
}

func TestParseMetrics_AltPercentileKeys(t *testing.T) {
	out := `{"type":"Point","metric":"http_req_duration","data":{"min":1,"avg":2,"p95":3,"p99":4,"max":5}}
{"type":"Point","metric":"http_reqs","data":{"count":10}}
{"type":"Point","metric":"http_req_failed","data":{"rate":0,"count":0}}
`
	m, err := ParseMetrics(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}
	if m.DurationP95Ms != 3 || m.DurationP99Ms != 4 {
		t.Errorf("alternate percentile keys not read: p95=%g p99=%g", m.DurationP95Ms, m.DurationP99Ms)
	}
}

func TestParseMetrics_Defaults(t *testing.T) {
	out := `{"type":"Point","metric":"http_req_duration","data":{"min":1,"avg":2,"p(95)":3,"p(99)":4,"max":5}}
{"type":"Point","metric":"http_reqs","data":{"count":10}}
{"type":"Point","metric":"http_req_failed","data":{"rate":0.1}}
`
	m, err := ParseMetrics(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}
	if m.ChecksRate != 1.0 {
		t.Errorf("checks rate default: got %g, want 1.0", m.ChecksRate)
	}
	if m.FailedCount != 0 || m.VUsMax != 0 || m.Iterations != 0 {
		t.Errorf("optional metrics should default to zero: %+v", m)
	}
}

func TestParseMetrics_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		out  string
		want string
	}{
		{
			name: "empty output",
			out:  "",
			want: "http_req_duration",
		},
		{
			name: "no failure metric",
			out: `{"type":"Point","metric":"http_req_duration","data":{"min":1,"avg":2,"p(95)":3,"p(99)":4,"max":5}}
{"type":"Point","metric":"http_reqs","data":{"count":10}}
`,
			want: "http_req_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMetrics(strings.NewReader(tt.out))
			if err == nil {
				t.Fatal("ParseMetrics() succeeded, want missing-metric error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %q", err, tt.want)
			}
		})
	}
}

func TestParseMetrics_InvalidValues(t *testing.T) {
	out := `{"type":"Point","metric":"http_req_duration","data":{"min":1,"avg":2,"p(95)":3,"p(99)":4,"max":5}}
{"type":"Point","metric":"http_reqs","data":{"count":10}}
{"type":"Point","metric":"http_req_failed","data":{"rate":1.5,"count":3}}
`
	if _, err := ParseMetrics(strings.NewReader(out)); err == nil {
		t.Error("ParseMetrics() accepted a failure rate above 1")
	}
}
