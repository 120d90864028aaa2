package score

import "fmt"

// Priority tags a recommendation for downstream rendering. Consumers
// partition by tag (HIGH block first, then MEDIUM, then OK).
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityOK     Priority = "OK"
)

// Recommendation is one actionable finding derived from an analyzed Result.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// Capacity-margin alert boundaries, percent of estimated capacity.
const (
	capacityMarginCriticalPct = 20.0
	capacityMarginWarnPct     = 50.0
)

// checksAlertRate is the check pass rate below which a recommendation fires.
const checksAlertRate = 0.80

// Recommendations derives the prioritized recommendation list from res.
//
// Rules are independent and evaluated in a fixed order (response time,
// error rate, threshold breach, capacity margin, checks); each appends at
// most one item. The list is never empty: a clean result gets a single OK
// item, and an unanalyzable result gets a single informational one. The
// function is pure — repeated calls on the same Result yield identical
// output.
func (a *Analyzer) Recommendations(res *Result) []Recommendation {
	if !res.Success || res.Metrics == nil {
		return []Recommendation{{
			Priority: PriorityOK,
			Message:  "Cannot generate recommendations for a failed test.",
		}}
	}

	var recs []Recommendation
	m := res.Metrics

	if g := res.ResponseTimeGrade; g != nil {
		switch g.Letter {
		case GradeD, GradeF:
			recs = append(recs, Recommendation{PriorityHigh, fmt.Sprintf(
				"Response time p95 is %.0fms. Optimize database queries, enable caching, or scale infrastructure.",
				m.DurationP95Ms)})
		case GradeC:
			recs = append(recs, Recommendation{PriorityMedium, fmt.Sprintf(
				"Response time p95 is %.0fms. Consider caching strategies or a CDN for static assets.",
				m.DurationP95Ms)})
		}
	}

	if g := res.ErrorRateGrade; g != nil {
		errPct := m.FailedRate * 100
		switch g.Letter {
		case GradeD, GradeF:
			recs = append(recs, Recommendation{PriorityHigh, fmt.Sprintf(
				"Error rate is %.2f%%. Investigate %d failed requests. Check logs, database connections, and third-party API calls.",
				errPct, m.FailedCount)})
		case GradeC:
			recs = append(recs, Recommendation{PriorityMedium, fmt.Sprintf(
				"Error rate is %.2f%%. Monitor error logs and set up alerts for error rate spikes.",
				errPct)})
		}
	}

	if res.ThresholdFailed {
		recs = append(recs, Recommendation{PriorityHigh,
			"Safety thresholds were exceeded during the test. The server is degrading under load: reduce traffic or scale up."})
	}

	if res.MaxUsersEstimate > 0 && m.VUsMax > 0 {
		marginUsers := res.MaxUsersEstimate - m.VUsMax
		marginPct := float64(marginUsers) / float64(res.MaxUsersEstimate) * 100
		switch {
		case marginPct < capacityMarginCriticalPct:
			recs = append(recs, Recommendation{PriorityHigh, fmt.Sprintf(
				"Capacity margin is only %.0f%% (%d users). Scale infrastructure before the next traffic peak.",
				marginPct, marginUsers)})
		case marginPct < capacityMarginWarnPct:
			recs = append(recs, Recommendation{PriorityMedium, fmt.Sprintf(
				"Capacity margin is %.0f%% (%d users). Consider scaling if expecting traffic spikes.",
				marginPct, marginUsers)})
		}
	}

	if m.ChecksRate < checksAlertRate {
		failPct := (1 - m.ChecksRate) * 100
		recs = append(recs, Recommendation{PriorityMedium, fmt.Sprintf(
			"%.1f%% of checks failed. Review check definitions or investigate intermittent failures.",
			failPct)})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{PriorityOK,
			"No critical issues detected. The system is performing well under load."})
	}

	return recs
}
