package score

import (
	"reflect"
	"strings"
	"testing"
)

// analyzedResult builds and analyzes a successful result with the given
// p95, error rate and check rate at 200 tested VUs.
func analyzedResult(t *testing.T, p95, errRate, checksRate float64, thresholdFailed bool) (*Analyzer, *Result) {
	t.Helper()
	a := NewAnalyzer(DefaultThresholds())
	m := healthyMetrics()
	m.DurationP95Ms = p95
	m.FailedRate = errRate
	m.FailedCount = int(errRate * float64(m.TotalCount))
	m.ChecksRate = checksRate
	res := &Result{
		URL:             "https://shop.example.com/",
		PageType:        "homepage",
		Environment:     "preprod",
		Intensity:       "medium",
		Success:         true,
		DurationSeconds: 300,
		ThresholdFailed: thresholdFailed,
		Metrics:         m,
	}
	return a, a.Analyze(res)
}

func countPriority(recs []Recommendation, p Priority) int {
	var n int
	for _, r := range recs {
		if r.Priority == p {
			n++
		}
	}
	return n
}

func TestRecommendations_CleanRunGetsSingleOK(t *testing.T) {
	// A-grade latency and errors, wide capacity margin, passing checks.
	a, res := analyzedResult(t, 450, 0.0002, 0.99, false)

	recs := a.Recommendations(res)
	if len(recs) != 1 {
		t.Fatalf("got %d recommendations, want exactly 1: %+v", len(recs), recs)
	}
	if recs[0].Priority != PriorityOK {
		t.Errorf("priority: got %s, want OK", recs[0].Priority)
	}
}

func TestRecommendations_DegradedRunFiresHighRules(t *testing.T) {
	// F-grade latency and errors plus a threshold breach. The 6000ms p95 is
	// past the capacity target, so the capacity margin goes negative and
	// fires too.
	a, res := analyzedResult(t, 6000, 0.15, 0.95, true)

	recs := a.Recommendations(res)
	if got := countPriority(recs, PriorityHigh); got < 3 {
		t.Fatalf("got %d HIGH recommendations, want at least 3: %+v", got, recs)
	}

	var sawThreshold bool
	for _, r := range recs {
		if strings.Contains(r.Message, "thresholds were exceeded") {
			sawThreshold = true
		}
	}
	if !sawThreshold {
		t.Error("missing threshold-breach recommendation")
	}
	if countPriority(recs, PriorityOK) != 0 {
		t.Error("degraded run must not carry the OK item")
	}
}

func TestRecommendations_MediumRules(t *testing.T) {
	// C-grade latency (2500ms) and C-grade errors (2%), failing checks.
	a, res := analyzedResult(t, 2500, 0.02, 0.70, false)

	recs := a.Recommendations(res)
	if got := countPriority(recs, PriorityMedium); got < 3 {
		t.Fatalf("got %d MEDIUM recommendations, want at least 3: %+v", got, recs)
	}

	var sawChecks bool
	for _, r := range recs {
		if strings.Contains(r.Message, "checks failed") {
			sawChecks = true
		}
	}
	if !sawChecks {
		t.Error("missing failing-checks recommendation")
	}
}

func TestRecommendations_InsertionOrder(t *testing.T) {
	a, res := analyzedResult(t, 6000, 0.15, 0.70, true)

	recs := a.Recommendations(res)
	wantOrder := []string{"Response time", "Error rate", "Safety thresholds", "Capacity margin", "checks failed"}
	if len(recs) != len(wantOrder) {
		t.Fatalf("got %d recommendations, want %d: %+v", len(recs), len(wantOrder), recs)
	}
	for i, prefix := range wantOrder {
		if !strings.Contains(recs[i].Message, prefix) {
			t.Errorf("recs[%d] = %q, want it to mention %q", i, recs[i].Message, prefix)
		}
	}
}

func TestRecommendations_UnanalyzableResult(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())

	for _, res := range []*Result{
		{Success: false, ErrorMessage: "binary not found"},
		{Success: true, Metrics: nil},
	} {
		recs := a.Recommendations(res)
		if len(recs) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(recs))
		}
		if !strings.Contains(recs[0].Message, "Cannot generate recommendations") {
			t.Errorf("unexpected message: %q", recs[0].Message)
		}
	}
}

func TestRecommendations_Pure(t *testing.T) {
	a, res := analyzedResult(t, 2500, 0.02, 0.70, true)

	first := a.Recommendations(res)
	second := a.Recommendations(res)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
