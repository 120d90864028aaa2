package score

import "fmt"

// Letter is a single performance grade letter.
type Letter string

// Grade letters, best to worst.
const (
	GradeA Letter = "A"
	GradeB Letter = "B"
	GradeC Letter = "C"
	GradeD Letter = "D"
	GradeF Letter = "F"
)

// Metrics is the finalized telemetry snapshot of one load-test run.
// All values are totals for the whole run — no partial or streaming
// updates are supported. Percentile fields are assumed non-decreasing
// (min ≤ avg ≤ p95 ≤ p99 ≤ max); the analyzer tolerates violations but
// does not re-derive them.
type Metrics struct {
	// Response time distribution in milliseconds.
	DurationMinMs float64 `json:"http_req_duration_min"`
	DurationAvgMs float64 `json:"http_req_duration_avg"`
	DurationP95Ms float64 `json:"http_req_duration_p95"`
	DurationP99Ms float64 `json:"http_req_duration_p99"`
	DurationMaxMs float64 `json:"http_req_duration_max"`

	// Error metrics.
	FailedRate  float64 `json:"http_req_failed_rate"` // 0–1
	FailedCount int     `json:"http_req_failed_count"`
	TotalCount  int     `json:"http_req_total_count"`

	// ChecksRate is the aggregate pass rate of per-request assertions, 0–1.
	ChecksRate float64 `json:"checks_rate"`

	// Load metrics.
	VUsMax     int `json:"vus_max"`
	Iterations int `json:"iterations"`

	// Data transfer.
	DataReceivedBytes int64 `json:"data_received_bytes"`
	DataSentBytes     int64 `json:"data_sent_bytes"`
}

// Validate rejects malformed upstream data before it reaches the grading
// arithmetic. Called at the parse boundary, not inside the analyzer.
func (m *Metrics) Validate() error {
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"min", m.DurationMinMs},
		{"avg", m.DurationAvgMs},
		{"p95", m.DurationP95Ms},
		{"p99", m.DurationP99Ms},
		{"max", m.DurationMaxMs},
	} {
		if d.v < 0 {
			return fmt.Errorf("score: duration %s must be non-negative, got %g", d.name, d.v)
		}
	}
	if m.FailedRate < 0 || m.FailedRate > 1 {
		return fmt.Errorf("score: failed rate must be in [0,1], got %g", m.FailedRate)
	}
	if m.ChecksRate < 0 || m.ChecksRate > 1 {
		return fmt.Errorf("score: checks rate must be in [0,1], got %g", m.ChecksRate)
	}
	if m.FailedCount < 0 || m.TotalCount < 0 {
		return fmt.Errorf("score: request counts must be non-negative")
	}
	if m.FailedCount > m.TotalCount {
		return fmt.Errorf("score: failed count %d exceeds total count %d", m.FailedCount, m.TotalCount)
	}
	if m.VUsMax < 0 || m.Iterations < 0 {
		return fmt.Errorf("score: load metrics must be non-negative")
	}
	if m.DataReceivedBytes < 0 || m.DataSentBytes < 0 {
		return fmt.Errorf("score: data transfer metrics must be non-negative")
	}
	return nil
}

// Grade is a graded verdict for one dimension (or the weighted aggregate).
type Grade struct {
	Letter      Letter  `json:"grade"`
	Score       float64 `json:"score"` // 0–100
	Description string  `json:"description"`
}

// Validate checks the letter and score range. Grades built by the analyzer
// are always valid; this exists for grades crossing a trust boundary.
func (g Grade) Validate() error {
	switch g.Letter {
	case GradeA, GradeB, GradeC, GradeD, GradeF:
	default:
		return fmt.Errorf("score: unknown grade letter %q", g.Letter)
	}
	if g.Score < 0 || g.Score > 100 {
		return fmt.Errorf("score: grade score must be in [0,100], got %g", g.Score)
	}
	return nil
}

// Result is the complete outcome of one load-test run: the execution
// envelope produced by the executor plus the analysis fields populated by
// Analyzer.Analyze. A Result whose run failed or carries no Metrics keeps
// all analysis fields nil — that is a valid terminal state, not an error.
type Result struct {
	// Test configuration.
	URL         string `json:"url"`
	PageType    string `json:"page_type"`
	Environment string `json:"environment"`
	Intensity   string `json:"intensity"`

	// Execution envelope.
	Success         bool    `json:"success"`
	DurationSeconds float64 `json:"duration_seconds"`
	ThresholdFailed bool    `json:"threshold_failed"`
	ErrorMessage    string  `json:"error_message,omitempty"`

	// Raw metrics, nil when the run failed before producing telemetry.
	Metrics *Metrics `json:"metrics,omitempty"`

	// Analysis fields, populated once by Analyze and never mutated again.
	ResponseTimeGrade *Grade `json:"response_time_grade,omitempty"`
	ErrorRateGrade    *Grade `json:"error_rate_grade,omitempty"`
	OverallGrade      *Grade `json:"overall_grade,omitempty"`
	MaxUsersEstimate  int    `json:"max_users_estimate,omitempty"`
}

// Analyzed reports whether the analysis fields have been populated.
func (r *Result) Analyzed() bool {
	return r.OverallGrade != nil
}
