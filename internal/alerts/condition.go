package alerts

import (
	"strconv"
	"strings"

	"github.com/promoload/promoload/internal/score"
)

// evalCondition evaluates a rule condition string against an analyzed run.
//
// Supported expressions (field operator value):
//
//	overall_score < 60
//	response_time_score < 70
//	error_rate_score < 70
//	p95_ms > 3000
//	error_rate > 0.05
//	checks_rate < 0.80
//	max_users < 500
//	threshold_failed == true
//	grade == F
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed, the field is
// unknown, or the run carries no data for it.
func evalCondition(cond string, res *score.Result) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "grade":
		if op != "==" || res.OverallGrade == nil {
			return false, 0
		}
		return string(res.OverallGrade.Letter) == rhs, res.OverallGrade.Score

	case "threshold_failed":
		if op != "==" {
			return false, 0
		}
		want, err := strconv.ParseBool(rhs)
		if err != nil {
			return false, 0
		}
		return res.ThresholdFailed == want, 0

	default:
		v, ok := numericField(field, res)
		if !ok {
			return false, 0
		}
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		return compareFloat(v, op, threshold), v
	}
}

// numericField maps a field name to its value in the analyzed run.
// The second return is false for fields the run has no data for.
func numericField(field string, res *score.Result) (float64, bool) {
	switch field {
	case "overall_score":
		if res.OverallGrade == nil {
			return 0, false
		}
		return res.OverallGrade.Score, true
	case "response_time_score":
		if res.ResponseTimeGrade == nil {
			return 0, false
		}
		return res.ResponseTimeGrade.Score, true
	case "error_rate_score":
		if res.ErrorRateGrade == nil {
			return 0, false
		}
		return res.ErrorRateGrade.Score, true
	case "p95_ms":
		if res.Metrics == nil {
			return 0, false
		}
		return res.Metrics.DurationP95Ms, true
	case "error_rate":
		if res.Metrics == nil {
			return 0, false
		}
		return res.Metrics.FailedRate, true
	case "checks_rate":
		if res.Metrics == nil {
			return 0, false
		}
		return res.Metrics.ChecksRate, true
	case "max_users":
		return float64(res.MaxUsersEstimate), res.MaxUsersEstimate > 0
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
