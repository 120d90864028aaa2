package report

import (
	"time"

	"github.com/promoload/promoload/internal/probe"
	"github.com/promoload/promoload/internal/promo"
	"github.com/promoload/promoload/internal/score"
)

// Capacity margin verdict boundaries, in percent of estimated capacity.
const (
	marginHealthyPct = 20
	marginWatchPct   = 10
)

// Data is everything a renderer needs for one run.
type Data struct {
	RunID       string
	GeneratedAt time.Time

	Result          *score.Result
	Recommendations []score.Recommendation

	// Promotions detected on the page, nil when scraping was disabled.
	Promotions *promo.Promotions

	// Server-side samples taken around the run, nil when no probe
	// endpoint is configured.
	ProbeBefore *probe.Snapshot
	ProbeAfter  *probe.Snapshot
}

// statusText is the executive-summary verdict per overall grade.
var statusText = map[score.Letter]string{
	score.GradeA: "Excellent performance - ready for peak traffic",
	score.GradeB: "Good performance - safe to deploy",
	score.GradeC: "Acceptable performance - monitoring recommended",
	score.GradeD: "Insufficient performance - optimization needed",
	score.GradeF: "Critical performance - do not deploy to production",
}

// capacityMargin returns the remaining headroom between the tested
// load and the estimated capacity. ok is false when the run carries no
// capacity estimate.
func capacityMargin(res *score.Result) (users int, pct float64, ok bool) {
	if res.MaxUsersEstimate <= 0 || res.Metrics == nil || res.Metrics.VUsMax <= 0 {
		return 0, 0, false
	}
	users = res.MaxUsersEstimate - res.Metrics.VUsMax
	pct = float64(users) / float64(res.MaxUsersEstimate) * 100
	return users, pct, true
}

// capacityVerdict grades the remaining headroom.
func capacityVerdict(pct float64) string {
	switch {
	case pct >= marginHealthyPct:
		return "Sufficient capacity with a healthy margin"
	case pct >= marginWatchPct:
		return "Capacity near its limit, monitoring recommended"
	default:
		return "Insufficient capacity - CRITICAL"
	}
}

// probeDiff derives the server-side delta for a run that has both
// samples. Callers must check the snapshots are present.
func probeDiff(d Data) probe.Delta {
	return probe.Diff(*d.ProbeBefore, *d.ProbeAfter)
}

// splitByPriority partitions recommendations into high, medium and
// positive groups, preserving order within each group.
func splitByPriority(recs []score.Recommendation) (high, medium, positive []score.Recommendation) {
	for _, r := range recs {
		switch r.Priority {
		case score.PriorityHigh:
			high = append(high, r)
		case score.PriorityMedium:
			medium = append(medium, r)
		default:
			positive = append(positive, r)
		}
	}
	return high, medium, positive
}
