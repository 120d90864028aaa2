package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/promoload/promoload/internal/score"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultK6Binary     = "k6"
	DefaultK6Timeout    = 1 * time.Hour
	DefaultTemplatesDir = "templates"
	DefaultOutputDir    = "output"
	DefaultOutputFormat = "both"
	DefaultHistoryDir   = "history"
	DefaultRetention    = 7 * 24 * time.Hour
	DefaultPageTimeout  = 30 * time.Second
	DefaultProbeTimeout = 10 * time.Second
	DefaultProdMaxVUs   = 50
)

// Config is the top-level configuration for promoload.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	K6         K6Config         `yaml:"k6"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Prod       ProdConfig       `yaml:"prod"`
	Scrape     ScrapeConfig     `yaml:"scrape"`
	Probe      ProbeConfig      `yaml:"probe"`
	Output     OutputConfig     `yaml:"output"`
	History    HistoryConfig    `yaml:"history"`
	Alerts     AlertsConfig     `yaml:"alerts"`
}

// K6Config holds the load-test executor settings.
type K6Config struct {
	// Binary is the k6 executable path (default: "k6" in PATH).
	Binary string `yaml:"binary"`

	// Timeout is the maximum wall-clock time for one k6 run.
	Timeout time.Duration `yaml:"timeout"`

	// TemplatesDir holds the per-page-type script templates.
	TemplatesDir string `yaml:"templates_dir"`
}

// ThresholdsConfig holds the scoring boundaries. Zero values are replaced
// by the engine defaults so a config file may override only some of them.
type ThresholdsConfig struct {
	ResponseTimeExcellentMs  float64 `yaml:"response_time_excellent_ms"`
	ResponseTimeGoodMs       float64 `yaml:"response_time_good_ms"`
	ResponseTimeAcceptableMs float64 `yaml:"response_time_acceptable_ms"`
	ResponseTimeSlowMs       float64 `yaml:"response_time_slow_ms"`

	// Error-rate boundaries are 0–1 decimals, not percentages.
	ErrorRateExcellent  float64 `yaml:"error_rate_excellent"`
	ErrorRateGood       float64 `yaml:"error_rate_good"`
	ErrorRateAcceptable float64 `yaml:"error_rate_acceptable"`
	ErrorRatePoor       float64 `yaml:"error_rate_poor"`

	CapacityTargetP95Ms  float64 `yaml:"capacity_target_p95_ms"`
	CapacitySafetyMargin float64 `yaml:"capacity_safety_margin"`
}

// Score converts the config section into the engine's Thresholds value,
// filling unset fields from the defaults.
func (t ThresholdsConfig) Score() score.Thresholds {
	out := score.DefaultThresholds()
	if t.ResponseTimeExcellentMs > 0 {
		out.ResponseTimeExcellentMs = t.ResponseTimeExcellentMs
	}
	if t.ResponseTimeGoodMs > 0 {
		out.ResponseTimeGoodMs = t.ResponseTimeGoodMs
	}
	if t.ResponseTimeAcceptableMs > 0 {
		out.ResponseTimeAcceptableMs = t.ResponseTimeAcceptableMs
	}
	if t.ResponseTimeSlowMs > 0 {
		out.ResponseTimeSlowMs = t.ResponseTimeSlowMs
	}
	if t.ErrorRateExcellent > 0 {
		out.ErrorRateExcellent = t.ErrorRateExcellent
	}
	if t.ErrorRateGood > 0 {
		out.ErrorRateGood = t.ErrorRateGood
	}
	if t.ErrorRateAcceptable > 0 {
		out.ErrorRateAcceptable = t.ErrorRateAcceptable
	}
	if t.ErrorRatePoor > 0 {
		out.ErrorRatePoor = t.ErrorRatePoor
	}
	if t.CapacityTargetP95Ms > 0 {
		out.CapacityTargetP95Ms = t.CapacityTargetP95Ms
	}
	if t.CapacitySafetyMargin > 0 {
		out.CapacitySafetyMargin = t.CapacitySafetyMargin
	}
	return out
}

// ProdConfig holds the safety limits applied to production runs.
type ProdConfig struct {
	// MaxVUs caps concurrency in production regardless of intensity.
	MaxVUs int `yaml:"max_vus"`

	// WindowStart/WindowEnd bound the allowed run window (HH:MM, local).
	// Empty means no window restriction.
	WindowStart string `yaml:"window_start"`
	WindowEnd   string `yaml:"window_end"`
}

// ScrapeConfig holds the promotion-scraper settings.
type ScrapeConfig struct {
	// Enabled toggles promotion scraping before the load test.
	Enabled bool `yaml:"enabled"`

	// Headless runs the browser without a display. Only disable locally.
	Headless bool `yaml:"headless"`

	// PageTimeout bounds a single page load.
	PageTimeout time.Duration `yaml:"page_timeout"`
}

// ProbeConfig holds the optional server-side metrics probe settings.
type ProbeConfig struct {
	// Endpoint is a Prometheus exposition URL sampled before and after the
	// run. Empty disables the probe.
	Endpoint string `yaml:"endpoint"`

	Timeout time.Duration `yaml:"timeout"`
}

// OutputConfig holds the report output settings.
type OutputConfig struct {
	Dir string `yaml:"dir"`

	// Format is one of: markdown | pdf | both.
	Format string `yaml:"format"`
}

// HistoryConfig configures the run-history store.
type HistoryConfig struct {
	Dir string `yaml:"dir"`

	// Retention is how long past runs are kept before pruning.
	Retention time.Duration `yaml:"retention"`
}

// AlertsConfig holds the post-run alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition evaluated against
// an analyzed run.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "overall_score < 60" or "grade == F".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a ready-to-use configuration without a config file.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		K6: K6Config{
			Binary:       DefaultK6Binary,
			Timeout:      DefaultK6Timeout,
			TemplatesDir: DefaultTemplatesDir,
		},
		Prod: ProdConfig{
			MaxVUs: DefaultProdMaxVUs,
		},
		Scrape: ScrapeConfig{
			Enabled:     true,
			Headless:    true,
			PageTimeout: DefaultPageTimeout,
		},
		Probe: ProbeConfig{
			Timeout: DefaultProbeTimeout,
		},
		Output: OutputConfig{
			Dir:    DefaultOutputDir,
			Format: DefaultOutputFormat,
		},
		History: HistoryConfig{
			Dir:       DefaultHistoryDir,
			Retention: DefaultRetention,
		},
	}
}

// validate checks required fields and structural constraints. The scoring
// engine trusts threshold monotonicity, so it is enforced here at the
// boundary instead.
func validate(cfg *Config) error {
	if cfg.K6.Binary == "" {
		return fmt.Errorf("k6.binary is required")
	}
	if cfg.K6.Timeout <= 0 {
		return fmt.Errorf("k6.timeout must be positive")
	}
	switch cfg.Output.Format {
	case "markdown", "pdf", "both":
	default:
		return fmt.Errorf("output.format must be markdown, pdf or both, got %q", cfg.Output.Format)
	}
	if cfg.Prod.MaxVUs <= 0 {
		return fmt.Errorf("prod.max_vus must be positive")
	}
	if cfg.History.Retention <= 0 {
		return fmt.Errorf("history.retention must be positive")
	}

	th := cfg.Thresholds.Score()
	if !ascending(th.ResponseTimeExcellentMs, th.ResponseTimeGoodMs, th.ResponseTimeAcceptableMs, th.ResponseTimeSlowMs) {
		return fmt.Errorf("thresholds: response-time boundaries must be strictly ascending")
	}
	if !ascending(th.ErrorRateExcellent, th.ErrorRateGood, th.ErrorRateAcceptable, th.ErrorRatePoor) {
		return fmt.Errorf("thresholds: error-rate boundaries must be strictly ascending")
	}
	for _, r := range []float64{th.ErrorRateExcellent, th.ErrorRateGood, th.ErrorRateAcceptable, th.ErrorRatePoor} {
		if r < 0 || r > 1 {
			return fmt.Errorf("thresholds: error-rate boundaries must be 0–1 decimals, got %g", r)
		}
	}
	if th.CapacitySafetyMargin <= 0 || th.CapacitySafetyMargin > 1 {
		return fmt.Errorf("thresholds: capacity_safety_margin must be in (0,1], got %g", th.CapacitySafetyMargin)
	}

	for i, rule := range cfg.Alerts.Rules {
		if rule.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if rule.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, rule.Name)
		}
		switch rule.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, rule.Name, rule.Severity)
		}
	}
	for i, wh := range cfg.Alerts.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, wh.Type)
		}
	}
	return nil
}

func ascending(vs ...float64) bool {
	for i := 1; i < len(vs); i++ {
		if vs[i] <= vs[i-1] {
			return false
		}
	}
	return true
}
