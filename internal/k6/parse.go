package k6

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/promoload/promoload/internal/score"
)

// ndjsonPoint is one line of k6's NDJSON output. Only "Point" entries
// carry metric data; the Data map keeps the parser tolerant of fields
// that vary between k6 versions.
type ndjsonPoint struct {
	Type   string         `json:"type"`
	Metric string         `json:"metric"`
	Data   map[string]any `json:"data"`
}

func num(data map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := data[k].(float64); ok {
			return v, true
		}
	}
	return 0, false
}

// ParseMetrics reads k6 NDJSON output and assembles the run metrics.
// Unknown metrics and malformed lines are skipped; missing required
// duration or failure metrics are an error. Optional metrics default
// to zero, except the checks rate which defaults to a full pass.
func ParseMetrics(r io.Reader) (*score.Metrics, error) {
	m := &score.Metrics{ChecksRate: 1.0}
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var p ndjsonPoint
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			continue
		}
		if p.Type != "Point" {
			continue
		}

		switch p.Metric {
		case "http_req_duration":
			m.DurationMinMs, _ = num(p.Data, "min")
			m.DurationAvgMs, _ = num(p.Data, "avg")
			m.DurationP95Ms, _ = num(p.Data, "p(95)", "p95")
			m.DurationP99Ms, _ = num(p.Data, "p(99)", "p99")
			m.DurationMaxMs, _ = num(p.Data, "max")
			seen["http_req_duration"] = true
		case "http_reqs":
			if v, ok := num(p.Data, "count"); ok {
				m.TotalCount = int(v)
				seen["http_reqs"] = true
			}
		case "http_req_failed":
			if v, ok := num(p.Data, "rate"); ok {
				m.FailedRate = v
				seen["http_req_failed"] = true
			}
			if v, ok := num(p.Data, "count"); ok {
				m.FailedCount = int(v)
			}
		case "checks":
			if v, ok := num(p.Data, "rate"); ok {
				m.ChecksRate = v
			}
		case "vus_max":
			if v, ok := num(p.Data, "value"); ok {
				m.VUsMax = int(v)
			}
		case "iterations":
			if v, ok := num(p.Data, "count"); ok {
				m.Iterations = int(v)
			}
		case "data_received":
			if v, ok := num(p.Data, "count"); ok {
				m.DataReceivedBytes = int64(v)
			}
		case "data_sent":
			if v, ok := num(p.Data, "count"); ok {
				m.DataSentBytes = int64(v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("k6: read output: %w", err)
	}

	var missing []string
	for _, req := range []string{"http_req_duration", "http_req_failed", "http_reqs"} {
		if !seen[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("k6: output missing required metrics: %s", strings.Join(missing, ", "))
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("k6: invalid metrics in output: %w", err)
	}
	return m, nil
}

// ParseMetricsFile parses a k6 NDJSON output file.
func ParseMetricsFile(path string) (*score.Metrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("k6: open output: %w", err)
	}
	defer f.Close()
	return ParseMetrics(f)
}
