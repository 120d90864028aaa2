package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/promoload/promoload/internal/score"
)

type color struct{ r, g, b int }

type theme struct {
	primary color
	success color
	warning color
	danger  color
	gray900 color
	gray500 color
	gray200 color
}

var pdfTheme = theme{
	primary: color{31, 78, 121},
	success: color{40, 167, 69},
	warning: color{255, 193, 7},
	danger:  color{220, 53, 69},
	gray900: color{33, 37, 41},
	gray500: color{120, 126, 131},
	gray200: color{233, 236, 239},
}

// PDF renders the run analysis as a single PDF document.
func PDF(d Data) ([]byte, error) {
	e := newExporter()
	e.build(d)

	var buf bytes.Buffer
	if err := e.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("report: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

type exporter struct {
	pdf *gofpdf.Fpdf
}

func newExporter() *exporter {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 11)
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(pdfTheme.gray500.r, pdfTheme.gray500.g, pdfTheme.gray500.b)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	return &exporter{pdf: pdf}
}

func (e *exporter) build(d Data) {
	e.pdf.AddPage()
	e.addHeader(d)
	e.addVerdict(d.Result)
	if d.Result.Success && d.Result.OverallGrade != nil {
		e.addScores(d.Result)
		e.addCapacity(d.Result)
	}
	if d.Promotions != nil && d.Promotions.Any() {
		e.addPromotions(d)
	}
	e.addRecommendations(d.Recommendations)
	if !d.Result.Success {
		e.addError(d.Result)
	}
	e.addTechnicalDetails(d.Result)
}

func (e *exporter) addHeader(d Data) {
	pageW, _ := e.pdf.GetPageSize()
	left, _, right, _ := e.pdf.GetMargins()
	bandH := 28.0

	e.pdf.SetFillColor(pdfTheme.primary.r, pdfTheme.primary.g, pdfTheme.primary.b)
	e.pdf.Rect(0, 0, pageW, bandH, "F")

	e.pdf.SetTextColor(255, 255, 255)
	e.pdf.SetFont("Arial", "B", 18)
	e.pdf.SetXY(left, 6)
	e.pdf.CellFormat(pageW-left-right, 8, "LOAD TEST ANALYSIS", "", 1, "L", false, 0, "")

	e.pdf.SetFont("Arial", "", 10)
	e.pdf.SetXY(left, 15)
	e.pdf.CellFormat(pageW-left-right, 5, d.Result.URL, "", 1, "L", false, 0, "")

	e.pdf.SetFont("Arial", "", 8)
	e.pdf.SetXY(left, 21)
	e.pdf.CellFormat(pageW-left-right, 5, fmt.Sprintf("Run: %s | %s | %s | generated %s",
		d.RunID, strings.ToUpper(d.Result.Environment), d.Result.Intensity,
		d.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")

	e.pdf.SetY(bandH + 6)
}

// verdictColor maps an outcome to the banner color.
func verdictColor(r *score.Result) color {
	if !r.Success || r.OverallGrade == nil {
		return pdfTheme.danger
	}
	switch r.OverallGrade.Letter {
	case score.GradeA, score.GradeB:
		return pdfTheme.success
	case score.GradeC:
		return pdfTheme.warning
	default:
		return pdfTheme.danger
	}
}

func (e *exporter) addVerdict(r *score.Result) {
	y := e.pdf.GetY()
	c := verdictColor(r)
	e.pdf.SetFillColor(c.r, c.g, c.b)
	e.pdf.Rect(18, y, 174, 18, "F")

	text := "TEST FAILED"
	if r.Success && r.OverallGrade != nil {
		text = fmt.Sprintf("GRADE %s - %.1f/100", r.OverallGrade.Letter, r.OverallGrade.Score)
	}
	e.pdf.SetTextColor(255, 255, 255)
	e.pdf.SetFont("Arial", "B", 14)
	e.pdf.SetXY(22, y+3)
	e.pdf.CellFormat(166, 7, text, "", 1, "C", false, 0, "")

	if r.Success && r.OverallGrade != nil {
		e.pdf.SetFont("Arial", "", 9)
		e.pdf.SetXY(22, y+10)
		e.pdf.CellFormat(166, 5, statusText[r.OverallGrade.Letter], "", 1, "C", false, 0, "")
	}
	e.pdf.SetY(y + 22)
}

func (e *exporter) addSectionTitle(title string) {
	e.pdf.Ln(4)
	e.pdf.SetFont("Arial", "B", 12)
	e.pdf.SetTextColor(pdfTheme.primary.r, pdfTheme.primary.g, pdfTheme.primary.b)
	e.pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	e.pdf.SetDrawColor(pdfTheme.gray200.r, pdfTheme.gray200.g, pdfTheme.gray200.b)
	e.pdf.SetLineWidth(0.3)
	left, _, right, _ := e.pdf.GetMargins()
	pageW, _ := e.pdf.GetPageSize()
	e.pdf.Line(left, e.pdf.GetY(), pageW-right, e.pdf.GetY())
	e.pdf.Ln(2)
	e.pdf.SetTextColor(pdfTheme.gray900.r, pdfTheme.gray900.g, pdfTheme.gray900.b)
	e.pdf.SetFont("Arial", "", 10)
}

func (e *exporter) addRow(label, value string) {
	e.pdf.SetFont("Arial", "B", 10)
	e.pdf.CellFormat(60, 6, label, "", 0, "L", false, 0, "")
	e.pdf.SetFont("Arial", "", 10)
	e.pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

func (e *exporter) addScores(r *score.Result) {
	e.addSectionTitle("PERFORMANCE SCORES")
	m := r.Metrics
	e.addRow("Overall", fmt.Sprintf("%.1f/100 (grade %s)", r.OverallGrade.Score, r.OverallGrade.Letter))
	if r.ResponseTimeGrade != nil && m != nil {
		e.addRow("Response time (p95)", fmt.Sprintf("%.0fms - %.1f/100 (grade %s)",
			m.DurationP95Ms, r.ResponseTimeGrade.Score, r.ResponseTimeGrade.Letter))
	}
	if r.ErrorRateGrade != nil && m != nil {
		e.addRow("Error rate", fmt.Sprintf("%.2f%% - %.1f/100 (grade %s)",
			m.FailedRate*100, r.ErrorRateGrade.Score, r.ErrorRateGrade.Letter))
	}
}

func (e *exporter) addCapacity(r *score.Result) {
	users, pct, ok := capacityMargin(r)
	if !ok {
		return
	}
	e.addSectionTitle("SERVER CAPACITY")
	e.addRow("Users tested", fmt.Sprintf("%d concurrent VUs", r.Metrics.VUsMax))
	e.addRow("Estimated capacity", fmt.Sprintf("~%d users", r.MaxUsersEstimate))
	e.addRow("Safety margin", fmt.Sprintf("%d users (%.1f%%)", users, pct))
	e.addRow("Verdict", capacityVerdict(pct))
}

func (e *exporter) addPromotions(d Data) {
	p := d.Promotions
	e.addSectionTitle("DETECTED PROMOTIONS")
	if sp := p.StrikedPrice; sp != nil {
		e.addRow("Striked price", fmt.Sprintf("%.2f %s -> %.2f %s (-%.0f%%)",
			sp.RegularPrice, sp.Currency, sp.CurrentPrice, sp.Currency, sp.DiscountPercentage))
	}
	for _, rule := range p.CartRules {
		e.addRow(rule.RuleName, fmt.Sprintf("%.2f (%s)", rule.Amount, rule.DiscountType))
	}
	if p.HasManualCodeInput {
		e.addRow("Manual input", "promo code entry field detected")
	}
	e.addRow("Complexity", p.Complexity())
	e.addRow("Server impact", fmt.Sprintf("+%.0f%% load", p.ServerImpact()*100))
}

func (e *exporter) addRecommendations(recs []score.Recommendation) {
	e.addSectionTitle("RECOMMENDATIONS")
	high, medium, positive := splitByPriority(recs)

	writeGroup := func(c color, group []score.Recommendation) {
		for _, r := range group {
			e.pdf.SetTextColor(c.r, c.g, c.b)
			e.pdf.SetFont("Arial", "B", 10)
			e.pdf.CellFormat(22, 6, string(r.Priority), "", 0, "L", false, 0, "")
			e.pdf.SetTextColor(pdfTheme.gray900.r, pdfTheme.gray900.g, pdfTheme.gray900.b)
			e.pdf.SetFont("Arial", "", 10)
			e.pdf.MultiCell(0, 6, r.Message, "", "L", false)
		}
	}
	writeGroup(pdfTheme.danger, high)
	writeGroup(pdfTheme.warning, medium)
	writeGroup(pdfTheme.success, positive)
}

func (e *exporter) addError(r *score.Result) {
	e.addSectionTitle("ERROR DETAILS")
	msg := r.ErrorMessage
	if msg == "" {
		msg = "Unknown error"
	}
	e.pdf.MultiCell(0, 6, msg, "", "L", false)
	e.addRow("Duration before failure", fmt.Sprintf("%.1fs", r.DurationSeconds))
}

func (e *exporter) addTechnicalDetails(r *score.Result) {
	e.addSectionTitle("TECHNICAL DETAILS")
	e.addRow("Page type", r.PageType)
	e.addRow("Environment", r.Environment)
	e.addRow("Intensity", r.Intensity)
	e.addRow("Duration", fmt.Sprintf("%.1fs", r.DurationSeconds))
	e.addRow("Thresholds exceeded", yesNo(r.ThresholdFailed))

	if m := r.Metrics; m != nil {
		e.addRow("Response times", fmt.Sprintf("%.0f / %.0f / %.0f / %.0f / %.0f ms (min/avg/p95/p99/max)",
			m.DurationMinMs, m.DurationAvgMs, m.DurationP95Ms, m.DurationP99Ms, m.DurationMaxMs))
		e.addRow("Requests", fmt.Sprintf("%d total, %d failed (%.2f%%)",
			m.TotalCount, m.FailedCount, m.FailedRate*100))
		e.addRow("Checks", fmt.Sprintf("%.1f%% passed", m.ChecksRate*100))
		e.addRow("Max VUs", fmt.Sprintf("%d", m.VUsMax))
	}
}
