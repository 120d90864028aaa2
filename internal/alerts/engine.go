package alerts

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/promoload/promoload/internal/config"
	"github.com/promoload/promoload/internal/score"
)

// Alert is one alert event produced by evaluating a run.
type Alert struct {
	RuleName  string    `json:"rule_name"`
	RunID     string    `json:"run_id"`
	URL       string    `json:"url"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	FiredAt   time.Time `json:"fired_at"`
	Condition string    `json:"condition"`
}

// Engine evaluates the configured rules against analyzed runs and
// delivers webhook notifications for those that fire. Runs are
// one-shot, so there is no firing/resolved state to track.
type Engine struct {
	rules    []config.AlertRule
	webhooks []config.WebhookConfig
	client   *http.Client
	now      func() time.Time
}

// New creates an Engine from the alerts configuration.
// An Engine with empty rules is valid — Evaluate returns nothing.
func New(cfg config.AlertsConfig) *Engine {
	return &Engine{
		rules:    cfg.Rules,
		webhooks: cfg.Webhooks,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

// Evaluate tests all configured rules against the analyzed run and
// returns the alerts that fired, in rule order.
func (e *Engine) Evaluate(runID string, res *score.Result) []Alert {
	var fired []Alert
	for _, rule := range e.rules {
		fires, value := evalCondition(rule.Condition, res)
		if !fires {
			continue
		}
		sev := rule.Severity
		if sev == "" {
			sev = "warning"
		}
		a := Alert{
			RuleName:  rule.Name,
			RunID:     runID,
			URL:       res.URL,
			Severity:  sev,
			Value:     value,
			Condition: rule.Condition,
			Message: fmt.Sprintf("[%s] %s fired for %s (%s = %.2f)",
				sev, rule.Name, res.URL, rule.Condition, value),
			FiredAt: e.now(),
		}
		fired = append(fired, a)
		slog.Warn("alert fired",
			"rule", rule.Name,
			"url", res.URL,
			"value", value,
			"severity", sev,
		)
	}
	return fired
}

// Notify delivers the alerts to every configured webhook.
// Delivery failures are logged, never fatal.
func (e *Engine) Notify(alerts []Alert) {
	for i := range alerts {
		e.deliver(&alerts[i])
	}
}
