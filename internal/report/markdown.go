package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/promoload/promoload/internal/promo"
	"github.com/promoload/promoload/internal/score"
)

// Markdown renders the full analysis report.
func Markdown(d Data) string {
	sections := []string{
		mdHeader(d),
		mdSummary(d.Result),
	}
	if s := mdScores(d.Result); s != "" {
		sections = append(sections, s)
	}
	if s := mdCapacity(d.Result); s != "" {
		sections = append(sections, s)
	}
	if d.Promotions != nil && d.Promotions.Any() {
		sections = append(sections, mdPromotions(d.Promotions))
	}
	sections = append(sections, mdRecommendations(d.Recommendations))
	if !d.Result.Success {
		sections = append(sections, mdError(d.Result))
	}
	if s := mdProbe(d); s != "" {
		sections = append(sections, s)
	}
	sections = append(sections, mdTechnicalDetails(d.Result), mdGlossary())

	return strings.Join(sections, "\n\n")
}

func mdHeader(d Data) string {
	r := d.Result
	return fmt.Sprintf(`# Load Test Analysis

**URL tested:** %s
**Page type:** %s
**Environment:** %s
**Intensity:** %s
**Run ID:** %s
**Date:** %s

---`, r.URL, r.PageType, strings.ToUpper(r.Environment), r.Intensity,
		d.RunID, d.GeneratedAt.Format("2006-01-02 15:04:05"))
}

func mdSummary(r *score.Result) string {
	if !r.Success {
		return `## Executive Summary

**Test failed** - the run could not be completed.

See the "Error Details" section below.`
	}
	if r.OverallGrade == nil {
		return `## Executive Summary

**Analysis incomplete** - the results could not be analyzed.`
	}

	var sb strings.Builder
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(fmt.Sprintf("**%s**", statusText[r.OverallGrade.Letter]))

	if r.ThresholdFailed {
		sb.WriteString("\n\nWarning: the k6 safety thresholds were exceeded during the test.")
	}
	if users, pct, ok := capacityMargin(r); ok && pct < marginHealthyPct {
		sb.WriteString(fmt.Sprintf("\n\nWarning: low capacity margin: %.0f%% (%d users).", pct, users))
	}
	return sb.String()
}

func mdScores(r *score.Result) string {
	if !r.Success || r.OverallGrade == nil || r.ResponseTimeGrade == nil ||
		r.ErrorRateGrade == nil || r.Metrics == nil {
		return ""
	}
	m := r.Metrics
	return fmt.Sprintf(`## Performance Scores

| Criterion | Value | Score | Grade |
|-----------|-------|-------|-------|
| **Overall performance** | - | %.1f/100 | **%s** |
| Response time (p95) | %.0fms | %.1f/100 | %s |
| Error rate | %.2f%% | %.1f/100 | %s |

**Interpretation:**
- %s
- %s
- %s`,
		r.OverallGrade.Score, r.OverallGrade.Letter,
		m.DurationP95Ms, r.ResponseTimeGrade.Score, r.ResponseTimeGrade.Letter,
		m.FailedRate*100, r.ErrorRateGrade.Score, r.ErrorRateGrade.Letter,
		r.ResponseTimeGrade.Description,
		r.ErrorRateGrade.Description,
		r.OverallGrade.Description)
}

func mdCapacity(r *score.Result) string {
	users, pct, ok := capacityMargin(r)
	if !r.Success || !ok {
		return ""
	}
	return fmt.Sprintf(`## Server Capacity

- **Users tested:** %d concurrent VUs
- **Estimated capacity:** ~%d users maximum
- **Safety margin:** %d users (%.1f%%)

**Verdict:** %s

**Note:** the estimate is a linear extrapolation targeting p95 < 2000ms with a 20%% safety margin.`,
		r.Metrics.VUsMax, r.MaxUsersEstimate, users, pct, capacityVerdict(pct))
}

func mdPromotions(p *promo.Promotions) string {
	var details []string
	count := 0

	if sp := p.StrikedPrice; sp != nil {
		count++
		details = append(details, fmt.Sprintf("**Striked price** - %.2f %s -> %.2f %s (-%.0f%%)",
			sp.RegularPrice, sp.Currency, sp.CurrentPrice, sp.Currency, sp.DiscountPercentage))
	}
	for _, rule := range p.CartRules {
		count++
		switch rule.DiscountType {
		case promo.DiscountPercent:
			details = append(details, fmt.Sprintf("**%s** - %.0f%% off", rule.RuleName, rule.Amount))
		case promo.DiscountAmount:
			details = append(details, fmt.Sprintf("**%s** - %.2f off", rule.RuleName, rule.Amount))
		default:
			details = append(details, fmt.Sprintf("**%s** - %s", rule.RuleName, rule.DiscountType))
		}
	}
	if p.HasManualCodeInput {
		details = append(details, "**Manual input** - promo code entry field detected")
	}

	var sb strings.Builder
	sb.WriteString("## Detected Promotions\n\n")
	sb.WriteString(fmt.Sprintf("**Active promotions:** %d\n\n", count))
	for _, dl := range details {
		sb.WriteString("- " + dl + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n**Complexity:** %s", p.Complexity()))
	sb.WriteString(fmt.Sprintf("\n**Estimated server impact:** +%.0f%% load", p.ServerImpact()*100))
	return sb.String()
}

func mdRecommendations(recs []score.Recommendation) string {
	high, medium, positive := splitByPriority(recs)

	var sb strings.Builder
	sb.WriteString("## Recommendations\n")

	writeGroup := func(title string, group []score.Recommendation) {
		if len(group) == 0 {
			return
		}
		sb.WriteString("\n### " + title + "\n\n")
		for _, r := range group {
			sb.WriteString("- " + r.Message + "\n")
		}
	}
	writeGroup("HIGH priority", high)
	writeGroup("MEDIUM priority", medium)
	writeGroup("Positive points", positive)

	return strings.TrimRight(sb.String(), "\n")
}

func mdError(r *score.Result) string {
	msg := r.ErrorMessage
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf(`## Error Details

**Message:** %s

**Duration before failure:** %.1f seconds

**Suggested actions:**
- Check that the URL is reachable
- Check that k6 is installed (`+"`k6 version`"+`)
- Check the logs for details
- Retry with a lower intensity`, msg, r.DurationSeconds)
}

func mdProbe(d Data) string {
	if d.ProbeBefore == nil || d.ProbeAfter == nil {
		return ""
	}
	delta := probeDiff(d)
	return fmt.Sprintf(`## Server-Side Impact

Sampled from the target's metrics endpoint around the run.

- **CPU consumed:** %.1f seconds
- **Memory growth:** %.2f MB
- **Open file descriptors:** %+.0f
- **Requests served:** %.0f
- **Window:** %s`,
		delta.CPUSeconds,
		delta.MemoryGrowthBytes/1024/1024,
		delta.OpenFDsGrowth,
		delta.HTTPRequests,
		delta.Elapsed.Round(time.Second))
}

func mdTechnicalDetails(r *score.Result) string {
	base := fmt.Sprintf(`## Technical Details

**Test configuration:**
- URL: %s
- Page type: %s
- Environment: %s
- Intensity: %s
- Total duration: %.1fs
- k6 thresholds exceeded: %s`,
		r.URL, r.PageType, r.Environment, r.Intensity, r.DurationSeconds,
		yesNo(r.ThresholdFailed))

	if !r.Success || r.Metrics == nil {
		return base + fmt.Sprintf("\n- Success: %s", yesNo(r.Success))
	}

	m := r.Metrics
	return base + fmt.Sprintf(`

**Detailed metrics:**
- Response time (min/avg/p95/p99/max): %.0f / %.0f / %.0f / %.0f / %.0f ms
- Total requests: %d
- Failed requests: %d (%.2f%%)
- Check pass rate: %.1f%%
- Maximum VUs: %d
- Iterations: %d
- Data received: %.2f MB
- Data sent: %.2f KB`,
		m.DurationMinMs, m.DurationAvgMs, m.DurationP95Ms, m.DurationP99Ms, m.DurationMaxMs,
		m.TotalCount,
		m.FailedCount, m.FailedRate*100,
		m.ChecksRate*100,
		m.VUsMax,
		m.Iterations,
		float64(m.DataReceivedBytes)/1024/1024,
		float64(m.DataSentBytes)/1024)
}

func mdGlossary() string {
	return `## Glossary

**Technical terms explained for the marketing team:**

- **p95 (95th percentile):** the worst response time seen by 95% of requests. A p95 of 1500ms means 95% of visitors got a response in under 1.5 seconds.

- **Error rate:** the percentage of requests that failed (server errors, timeouts). A high rate points to a stability problem.

- **VUs (Virtual Users):** the number of concurrent users simulated during the test. More VUs means more load on the server.

- **k6 thresholds:** safety limits that stop the test automatically if the server degrades too far (too many errors or responses too slow).

- **Estimated capacity:** the maximum number of concurrent users the server can sustain while keeping acceptable performance (p95 < 2s).

- **Safety margin:** the share of capacity still unused. A 20% margin means the server can take 20% more users before reaching its limit.`
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
