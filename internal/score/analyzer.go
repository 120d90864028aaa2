package score

import (
	"log/slog"
	"math"
)

// Per-dimension grade descriptions, keyed by letter.
var responseTimeDescriptions = map[Letter]string{
	GradeA: "Excellent - Very fast response times",
	GradeB: "Good - Acceptable response times for production",
	GradeC: "Acceptable - Response times are within limits",
	GradeD: "Slow - Response times need optimization",
	GradeF: "Critical - Response times are unacceptable",
}

var errorRateDescriptions = map[Letter]string{
	GradeA: "Excellent - Minimal errors",
	GradeB: "Good - Low error rate",
	GradeC: "Acceptable - Error rate within tolerances",
	GradeD: "Poor - High error rate needs investigation",
	GradeF: "Critical - Error rate is unacceptable",
}

var overallDescriptions = map[Letter]string{
	GradeA: "Excellent - Ready for production with high confidence",
	GradeB: "Good - Suitable for production deployment",
	GradeC: "Acceptable - Can be deployed with monitoring",
	GradeD: "Poor - Optimization recommended before deployment",
	GradeF: "Critical - Not ready for production, requires fixes",
}

// Analyzer grades load-test results against a fixed Thresholds value.
// It is stateless between calls and safe for concurrent use.
type Analyzer struct {
	thresholds Thresholds
}

// NewAnalyzer returns an Analyzer using the given thresholds.
func NewAnalyzer(t Thresholds) *Analyzer {
	return &Analyzer{thresholds: t}
}

// Thresholds returns the configuration this Analyzer grades against.
func (a *Analyzer) Thresholds() Thresholds {
	return a.thresholds
}

// Analyze populates res with the three grades and the capacity estimate.
//
// A failed run, or one without metrics, is returned unchanged: analysis is
// only meaningful for a metrics-bearing, successful run, and the nil grade
// fields are a valid terminal state.
func (a *Analyzer) Analyze(res *Result) *Result {
	if !res.Success || res.Metrics == nil {
		slog.Warn("score: cannot analyze failed test result", "url", res.URL)
		return res
	}

	m := res.Metrics

	rtLetter, rtScore := a.thresholds.ResponseTimeGrade(m.DurationP95Ms)
	res.ResponseTimeGrade = &Grade{
		Letter:      rtLetter,
		Score:       rtScore,
		Description: responseTimeDescriptions[rtLetter],
	}

	errLetter, errScore := a.thresholds.ErrorRateGrade(m.FailedRate)
	res.ErrorRateGrade = &Grade{
		Letter:      errLetter,
		Score:       errScore,
		Description: errorRateDescriptions[errLetter],
	}

	overallLetter, overallScore := a.thresholds.OverallGrade(rtScore, errScore)
	res.OverallGrade = &Grade{
		Letter:      overallLetter,
		Score:       overallScore,
		Description: overallDescriptions[overallLetter],
	}

	res.MaxUsersEstimate = a.EstimateMaxUsers(m.VUsMax, m.DurationP95Ms)

	slog.Info("score: analysis complete",
		"grade", overallLetter,
		"score", overallScore,
		"max_users", res.MaxUsersEstimate,
	)
	return res
}

// EstimateMaxUsers extrapolates the maximum sustainable concurrent users
// from the tested concurrency and its observed p95.
//
// The model assumes latency scales linearly with concurrency — a coarse
// engineering approximation, deliberately made conservative by the safety
// margin, not a queueing-theoretic fit. If the observed p95 already meets
// or exceeds the target, the system is treated as at capacity and the
// margin is applied directly to the tested load. Non-positive inputs yield
// the defined zero sentinel, not an error.
func (a *Analyzer) EstimateMaxUsers(currentVUs int, currentP95 float64) int {
	if currentVUs <= 0 || currentP95 <= 0 {
		slog.Warn("score: invalid metrics for max users estimation",
			"vus", currentVUs, "p95_ms", currentP95)
		return 0
	}

	target := a.thresholds.CapacityTargetP95Ms
	margin := a.thresholds.CapacitySafetyMargin

	if currentP95 >= target {
		maxUsers := int(math.Floor(float64(currentVUs) * margin))
		slog.Info("score: at capacity, applying safety margin to tested load",
			"p95_ms", currentP95, "target_ms", target, "max_users", maxUsers)
		return maxUsers
	}

	rawMax := float64(currentVUs) * (target / currentP95)
	maxUsers := int(math.Floor(rawMax * margin))
	slog.Info("score: max users estimate",
		"vus", currentVUs, "p95_ms", currentP95,
		"target_ms", target, "max_users", maxUsers)
	return maxUsers
}
