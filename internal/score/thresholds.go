package score

// Aggregation weights for the overall grade. They must sum to 1.0.
// Response time weighs more: latency degradation affects every user
// continuously, while errors are binary per request.
const (
	weightResponseTime = 0.60
	weightErrorRate    = 0.40
)

// Numeric score bands per letter. Sub-scores interpolate linearly inside
// the band, so near-boundary results stay comparable.
const (
	bandAMax, bandAMin = 100.0, 90.0
	bandBMax, bandBMin = 89.0, 80.0
	bandCMax, bandCMin = 79.0, 70.0
	bandDMax, bandDMin = 69.0, 60.0
	bandFMax           = 59.0
)

// Thresholds holds the boundary values that partition each metric domain
// into grade bands, plus the capacity-extrapolation parameters. It is an
// immutable value object: construct one per analysis session and pass it
// explicitly — there is no package-level default singleton.
type Thresholds struct {
	// Response-time band boundaries, p95 milliseconds, ascending.
	// A grade value equal to a boundary falls into the next worse band.
	ResponseTimeExcellentMs  float64 `yaml:"response_time_excellent_ms"`
	ResponseTimeGoodMs       float64 `yaml:"response_time_good_ms"`
	ResponseTimeAcceptableMs float64 `yaml:"response_time_acceptable_ms"`
	ResponseTimeSlowMs       float64 `yaml:"response_time_slow_ms"`

	// Error-rate band boundaries, 0–1 decimals, ascending.
	ErrorRateExcellent  float64 `yaml:"error_rate_excellent"`
	ErrorRateGood       float64 `yaml:"error_rate_good"`
	ErrorRateAcceptable float64 `yaml:"error_rate_acceptable"`
	ErrorRatePoor       float64 `yaml:"error_rate_poor"`

	// Capacity extrapolation: the p95 the server should sustain and the
	// safety margin applied to the extrapolated user count.
	CapacityTargetP95Ms  float64 `yaml:"capacity_target_p95_ms"`
	CapacitySafetyMargin float64 `yaml:"capacity_safety_margin"` // 0–1
}

// DefaultThresholds returns the standard grading configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ResponseTimeExcellentMs:  1000,
		ResponseTimeGoodMs:       2000,
		ResponseTimeAcceptableMs: 3000,
		ResponseTimeSlowMs:       5000,

		ErrorRateExcellent:  0.001,
		ErrorRateGood:       0.01,
		ErrorRateAcceptable: 0.05,
		ErrorRatePoor:       0.10,

		CapacityTargetP95Ms:  2000,
		CapacitySafetyMargin: 0.80,
	}
}

// ResponseTimeGrade maps a p95 latency (ms) to a letter and a 0–100 score.
// Intervals are half-open: a p95 exactly on a boundary takes the worse
// band. The F band degrades by 1 point per 100 ms past the slow boundary,
// floored at 0. Negative input is not validated and yields a clamped,
// non-crashing result.
func (t Thresholds) ResponseTimeGrade(p95Ms float64) (Letter, float64) {
	switch {
	case p95Ms < t.ResponseTimeExcellentMs:
		s := bandAMax - (p95Ms/t.ResponseTimeExcellentMs)*10
		return GradeA, clamp(s, bandAMin, bandAMax)
	case p95Ms < t.ResponseTimeGoodMs:
		s := 90 - ratio(p95Ms, t.ResponseTimeExcellentMs, t.ResponseTimeGoodMs)*10
		return GradeB, clamp(s, bandBMin, bandBMax)
	case p95Ms < t.ResponseTimeAcceptableMs:
		s := 80 - ratio(p95Ms, t.ResponseTimeGoodMs, t.ResponseTimeAcceptableMs)*10
		return GradeC, clamp(s, bandCMin, bandCMax)
	case p95Ms < t.ResponseTimeSlowMs:
		s := 70 - ratio(p95Ms, t.ResponseTimeAcceptableMs, t.ResponseTimeSlowMs)*10
		return GradeD, clamp(s, bandDMin, bandDMax)
	default:
		s := 60 - (p95Ms-t.ResponseTimeSlowMs)/100
		return GradeF, clamp(s, 0, bandFMax)
	}
}

// ErrorRateGrade maps a failure rate (0–1) to a letter and a 0–100 score.
// Same band shape as ResponseTimeGrade; the F penalty is 500 points per
// unit of rate because the domain is [0,1] rather than milliseconds.
func (t Thresholds) ErrorRateGrade(rate float64) (Letter, float64) {
	switch {
	case rate < t.ErrorRateExcellent:
		s := bandAMax - (rate/t.ErrorRateExcellent)*10
		return GradeA, clamp(s, bandAMin, bandAMax)
	case rate < t.ErrorRateGood:
		s := 90 - ratio(rate, t.ErrorRateExcellent, t.ErrorRateGood)*10
		return GradeB, clamp(s, bandBMin, bandBMax)
	case rate < t.ErrorRateAcceptable:
		s := 80 - ratio(rate, t.ErrorRateGood, t.ErrorRateAcceptable)*10
		return GradeC, clamp(s, bandCMin, bandCMax)
	case rate < t.ErrorRatePoor:
		s := 70 - ratio(rate, t.ErrorRateAcceptable, t.ErrorRatePoor)*10
		return GradeD, clamp(s, bandDMin, bandDMax)
	default:
		s := 60 - (rate-t.ErrorRatePoor)*500
		return GradeF, clamp(s, 0, bandFMax)
	}
}

// OverallGrade aggregates the two dimension scores into the weighted
// overall verdict. Inputs are already in [0,100], so no clamping is needed.
func (t Thresholds) OverallGrade(responseTimeScore, errorRateScore float64) (Letter, float64) {
	overall := responseTimeScore*weightResponseTime + errorRateScore*weightErrorRate
	return letterFromScore(overall), overall
}

// letterFromScore maps a 0–100 score to its grade letter.
func letterFromScore(s float64) Letter {
	switch {
	case s >= 90:
		return GradeA
	case s >= 80:
		return GradeB
	case s >= 70:
		return GradeC
	case s >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// ratio is v's linear position between lo and hi, unclamped.
func ratio(v, lo, hi float64) float64 {
	return (v - lo) / (hi - lo)
}

// clamp restricts v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
