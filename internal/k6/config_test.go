package k6

import "testing"

func validConfig() LoadTestConfig {
	return LoadTestConfig{
		URL:         "https://preprod.shop.example.com/123-espresso.html",
		PageType:    "product",
		Environment: EnvPreprod,
		Intensity:   IntensityMedium,
		Mode:        ModeReadOnly,
	}
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name        string
		intensity   string
		env         string
		wantVUs     int
		wantMinutes int
	}{
		{"light preprod", IntensityLight, EnvPreprod, 50, 2},
		{"medium preprod", IntensityMedium, EnvPreprod, 200, 5},
		{"heavy preprod", IntensityHeavy, EnvPreprod, 500, 10},
		{"light prod keeps vus", IntensityLight, EnvProd, 50, 2},
		{"medium prod capped", IntensityMedium, EnvProd, 50, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ProfileFor(tt.intensity, tt.env)
			if err != nil {
				t.Fatalf("ProfileFor() error = %v", err)
			}
			if p.VUs != tt.wantVUs || p.DurationMinutes != tt.wantMinutes {
				t.Errorf("ProfileFor(%s, %s) = %+v, want vus=%d minutes=%d",
					tt.intensity, tt.env, p, tt.wantVUs, tt.wantMinutes)
			}
		})
	}

	if _, err := ProfileFor("extreme", EnvPreprod); err == nil {
		t.Error("unknown intensity accepted")
	}
}

func TestStages(t *testing.T) {
	tests := []struct {
		name    string
		profile IntensityProfile
		want    []Stage
	}{
		{
			// 2m leaves no sustain once ramp and teardown are carved out.
			name:    "light",
			profile: IntensityProfile{VUs: 50, DurationMinutes: 2},
			want:    []Stage{{"1m", 50}, {"0m", 50}, {"30s", 0}},
		},
		{
			name:    "medium",
			profile: IntensityProfile{VUs: 200, DurationMinutes: 5},
			want:    []Stage{{"1m", 200}, {"3m", 200}, {"30s", 0}},
		},
		{
			name:    "heavy",
			profile: IntensityProfile{VUs: 500, DurationMinutes: 10},
			want:    []Stage{{"2m", 500}, {"7m", 500}, {"30s", 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.profile.Stages()
			if len(got) != len(tt.want) {
				t.Fatalf("Stages() returned %d stages, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("stage %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestThresholdsFor(t *testing.T) {
	prod := ThresholdsFor(EnvProd)
	if len(prod.HTTPReqFailed) != 1 || prod.HTTPReqFailed[0].Expr != "rate<0.05" {
		t.Errorf("prod http_req_failed thresholds: %+v", prod.HTTPReqFailed)
	}
	if len(prod.HTTPReqDuration) != 3 || prod.HTTPReqDuration[0].Expr != "p(95)<3000" {
		t.Errorf("prod http_req_duration thresholds: %+v", prod.HTTPReqDuration)
	}
	if prod.HTTPReqDuration[2].AbortOnFail {
		t.Error("prod alert-only duration threshold aborts")
	}

	preprod := ThresholdsFor(EnvPreprod)
	if preprod.HTTPReqFailed[0].Expr != "rate<0.10" {
		t.Errorf("preprod http_req_failed threshold: %+v", preprod.HTTPReqFailed)
	}
	if preprod.HTTPReqDuration[0].Expr != "p(95)<5000" {
		t.Errorf("preprod http_req_duration threshold: %+v", preprod.HTTPReqDuration)
	}
	if len(preprod.Checks) != 1 || preprod.Checks[0].Expr != "rate>0.80" {
		t.Errorf("preprod checks threshold: %+v", preprod.Checks)
	}
}

func TestLoadTestConfigValidate(t *testing.T) {
	valid := validConfig()
	if err := valid.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*LoadTestConfig)
	}{
		{"empty url", func(c *LoadTestConfig) { c.URL = "" }},
		{"unknown page type", func(c *LoadTestConfig) { c.PageType = "checkout" }},
		{"unknown environment", func(c *LoadTestConfig) { c.Environment = "staging" }},
		{"unknown intensity", func(c *LoadTestConfig) { c.Intensity = "extreme" }},
		{"unknown mode", func(c *LoadTestConfig) { c.Mode = "write_only" }},
		{"heavy in prod", func(c *LoadTestConfig) {
			c.Environment = EnvProd
			c.Intensity = IntensityHeavy
		}},
		{"full product mode without product id", func(c *LoadTestConfig) {
			c.Mode = ModeFull
			c.ProductID = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("invalid config accepted: %+v", cfg)
			}
		})
	}

	// Full mode with the product id present is fine.
	cfg := validConfig()
	cfg.Mode = ModeFull
	cfg.ProductID = 123
	if err := cfg.Validate(); err != nil {
		t.Errorf("full mode with product id rejected: %v", err)
	}
}

func TestTemplatePage(t *testing.T) {
	tests := []struct{ in, want string }{
		{"product", "product"},
		{"category", "category"},
		{"catalog", "homepage"},
		{"unknown", "landing"},
		{"", "landing"},
	}
	for _, tt := range tests {
		if got := TemplatePage(tt.in); got != tt.want {
			t.Errorf("TemplatePage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
