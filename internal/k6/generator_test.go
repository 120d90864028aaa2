package k6

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testTemplate = `import http from "k6/http";

export const options = {
  stages: [
{{- range .Stages }}
    { duration: "{{ .Duration }}", target: {{ .Target }} },
{{- end }}
  ],
};

export default function () {
  http.get("{{ .URL }}");
{{- if and (eq .Mode "full") .ProductID }}
  // add-to-cart: {{ .ProductID }}
{{- end }}
}
`

func writeTemplates(t *testing.T, pageTypes ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, pt := range pageTypes {
		path := filepath.Join(dir, "template_"+pt+".js")
		if err := os.WriteFile(path, []byte(testTemplate), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}
	return dir
}

func TestGenerate(t *testing.T) {
	dir := writeTemplates(t, "product")
	g, err := NewGenerator(dir)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	cfg := validConfig()
	script, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		cfg.URL,
		`{ duration: "1m", target: 200 }`,
		`{ duration: "3m", target: 200 }`,
		`{ duration: "30s", target: 0 }`,
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Contains(script, "add-to-cart") {
		t.Error("read-only script contains add-to-cart section")
	}
}

func TestGenerate_FullMode(t *testing.T) {
	dir := writeTemplates(t, "product")
	g, err := NewGenerator(dir)
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	cfg := validConfig()
	cfg.Mode = ModeFull
	cfg.ProductID = 123

	script, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.Contains(script, "add-to-cart: 123") {
		t.Errorf("full-mode script missing add-to-cart section:\n%s", script)
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	g, err := NewGenerator(writeTemplates(t, "product"))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	cfg := validConfig()
	cfg.Intensity = "extreme"
	if _, err := g.Generate(cfg); err == nil {
		t.Error("Generate() accepted an invalid config")
	}
}

func TestGenerate_MissingTemplate(t *testing.T) {
	g, err := NewGenerator(writeTemplates(t, "homepage"))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}
	if _, err := g.Generate(validConfig()); err == nil {
		t.Error("Generate() succeeded without the product template")
	}
}

func TestGenerateToFile(t *testing.T) {
	g, err := NewGenerator(writeTemplates(t, "product"))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "scripts", "run.js")
	if err := g.GenerateToFile(validConfig(), out); err != nil {
		t.Fatalf("GenerateToFile() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read generated script: %v", err)
	}
	if !strings.Contains(string(data), "k6/http") {
		t.Error("generated script has no k6 import")
	}
}

func TestValidateTemplates(t *testing.T) {
	g, err := NewGenerator(writeTemplates(t, "product", "homepage"))
	if err != nil {
		t.Fatalf("NewGenerator() error = %v", err)
	}

	got := g.ValidateTemplates()
	want := map[string]bool{"product": true, "homepage": true, "category": false, "landing": false}
	for pt, ok := range want {
		if got[pt] != ok {
			t.Errorf("ValidateTemplates()[%q] = %v, want %v", pt, got[pt], ok)
		}
	}

	if names := g.Templates(); len(names) != 2 {
		t.Errorf("Templates() = %v, want 2 entries", names)
	}
}

func TestNewGenerator_MissingDir(t *testing.T) {
	if _, err := NewGenerator(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("NewGenerator() accepted a missing directory")
	}
}
