package k6

import "fmt"

// Target environments.
const (
	EnvProd    = "prod"
	EnvPreprod = "preprod"
)

// Test intensities.
const (
	IntensityLight  = "light"
	IntensityMedium = "medium"
	IntensityHeavy  = "heavy"
)

// Execution modes. Read-only issues GET requests only; full also posts
// add-to-cart and needs a product ID.
const (
	ModeReadOnly = "read_only"
	ModeFull     = "full"
)

// Production runs never exceed this many virtual users.
const prodMaxVUs = 50

// Stage is one step of the virtual-user ramp.
type Stage struct {
	Duration string `json:"duration"`
	Target   int    `json:"target"`
}

// ThresholdRule is one k6 threshold expression with its abort policy.
type ThresholdRule struct {
	Expr           string `json:"threshold"`
	AbortOnFail    bool   `json:"abort_on_fail"`
	DelayAbortEval string `json:"delay_abort_eval,omitempty"`
}

// ThresholdSet groups the safety thresholds embedded in a script,
// keyed by the k6 metric they guard.
type ThresholdSet struct {
	HTTPReqFailed   []ThresholdRule `json:"http_req_failed"`
	HTTPReqDuration []ThresholdRule `json:"http_req_duration"`
	Checks          []ThresholdRule `json:"checks"`
}

// ThresholdsFor returns the safety thresholds for an environment.
// Production gets the strict set since the target serves real traffic.
func ThresholdsFor(env string) ThresholdSet {
	if env == EnvProd {
		return ThresholdSet{
			HTTPReqFailed: []ThresholdRule{
				{Expr: "rate<0.05", AbortOnFail: true, DelayAbortEval: "10s"},
			},
			HTTPReqDuration: []ThresholdRule{
				{Expr: "p(95)<3000", AbortOnFail: true},
				{Expr: "p(99)<5000", AbortOnFail: true},
				{Expr: "p(95)<2000"}, // alert only
			},
			Checks: []ThresholdRule{
				{Expr: "rate>0.80", AbortOnFail: true, DelayAbortEval: "10s"},
			},
		}
	}
	return ThresholdSet{
		HTTPReqFailed: []ThresholdRule{
			{Expr: "rate<0.10", AbortOnFail: true, DelayAbortEval: "10s"},
		},
		HTTPReqDuration: []ThresholdRule{
			{Expr: "p(95)<5000", AbortOnFail: true},
			{Expr: "p(99)<8000", AbortOnFail: true},
			{Expr: "p(95)<2000"}, // alert only
		},
		Checks: []ThresholdRule{
			{Expr: "rate>0.80", AbortOnFail: true, DelayAbortEval: "10s"},
		},
	}
}

// IntensityProfile is the virtual-user count and total duration behind
// an intensity level.
type IntensityProfile struct {
	VUs             int
	DurationMinutes int
}

// ProfileFor resolves an intensity level for an environment.
// Production caps virtual users regardless of intensity.
func ProfileFor(intensity, env string) (IntensityProfile, error) {
	var p IntensityProfile
	switch intensity {
	case IntensityLight:
		p = IntensityProfile{VUs: 50, DurationMinutes: 2}
	case IntensityMedium:
		p = IntensityProfile{VUs: 200, DurationMinutes: 5}
	case IntensityHeavy:
		p = IntensityProfile{VUs: 500, DurationMinutes: 10}
	default:
		return p, fmt.Errorf("k6: unknown intensity %q", intensity)
	}
	if env == EnvProd && p.VUs > prodMaxVUs {
		p.VUs = prodMaxVUs
	}
	return p, nil
}

// Stages expands the profile into a ramp-up, sustain, ramp-down plan.
// Ramp-up takes roughly 20% of the duration, the sustain phase the
// rest minus a minute, and ramp-down is a fixed 30 seconds.
func (p IntensityProfile) Stages() []Stage {
	rampUp := p.DurationMinutes / 5
	if rampUp < 1 {
		rampUp = 1
	}
	sustain := p.DurationMinutes - rampUp - 1
	return []Stage{
		{Duration: fmt.Sprintf("%dm", rampUp), Target: p.VUs},
		{Duration: fmt.Sprintf("%dm", sustain), Target: p.VUs},
		{Duration: "30s", Target: 0},
	}
}

// LoadTestConfig pins down one load-test run.
type LoadTestConfig struct {
	URL         string `json:"url"`
	PageType    string `json:"page_type"` // product, homepage, category, landing
	Environment string `json:"environment"`
	Intensity   string `json:"intensity"`
	Mode        string `json:"mode"`

	// Product page parameters, used by full mode.
	ProductID          int `json:"id_product,omitempty"`
	ProductAttributeID int `json:"id_product_attribute,omitempty"`
}

// Validate enforces the run constraints before any script is generated.
func (c *LoadTestConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("k6: url is required")
	}
	switch c.PageType {
	case "product", "homepage", "category", "landing":
	default:
		return fmt.Errorf("k6: unknown page type %q", c.PageType)
	}
	switch c.Environment {
	case EnvProd, EnvPreprod:
	default:
		return fmt.Errorf("k6: unknown environment %q", c.Environment)
	}
	if _, err := ProfileFor(c.Intensity, c.Environment); err != nil {
		return err
	}
	switch c.Mode {
	case ModeReadOnly, ModeFull:
	default:
		return fmt.Errorf("k6: unknown mode %q", c.Mode)
	}

	if c.Environment == EnvProd && c.Intensity == IntensityHeavy {
		return fmt.Errorf("k6: heavy intensity is not allowed in prod")
	}
	if c.PageType == "product" && c.Mode == ModeFull && c.ProductID < 1 {
		return fmt.Errorf("k6: full mode on a product page requires a product id")
	}
	return nil
}

// Thresholds returns the safety thresholds for this run.
func (c *LoadTestConfig) Thresholds() ThresholdSet {
	return ThresholdsFor(c.Environment)
}

// Stages returns the virtual-user ramp plan for this run.
func (c *LoadTestConfig) Stages() ([]Stage, error) {
	p, err := ProfileFor(c.Intensity, c.Environment)
	if err != nil {
		return nil, err
	}
	return p.Stages(), nil
}
