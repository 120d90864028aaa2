package k6

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// Page types that have a script template.
var templatePageTypes = []string{"product", "homepage", "category", "landing"}

// TemplatePage maps a detected page type onto the template to use.
// Catalog pages load like the homepage; unknown pages get the generic
// landing script.
func TemplatePage(detected string) string {
	switch detected {
	case "product", "category":
		return detected
	case "catalog":
		return "homepage"
	default:
		return "landing"
	}
}

// scriptData is the rendering context handed to a script template.
type scriptData struct {
	URL                string
	PageType           string
	Environment        string
	Mode               string
	Stages             []Stage
	Thresholds         ThresholdSet
	ProductID          int
	ProductAttributeID int
}

// Generator renders k6 scripts from per-page-type templates.
type Generator struct {
	dir string
}

// NewGenerator returns a Generator reading templates from dir.
// The directory must exist; individual templates are resolved lazily.
func NewGenerator(dir string) (*Generator, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("k6: templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("k6: templates path %q is not a directory", dir)
	}
	return &Generator{dir: dir}, nil
}

func templateName(pageType string) string {
	return "template_" + pageType + ".js"
}

// Generate renders the k6 script for a validated run config.
func (g *Generator) Generate(cfg LoadTestConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	name := templateName(cfg.PageType)
	tmpl, err := template.ParseFiles(filepath.Join(g.dir, name))
	if err != nil {
		return "", fmt.Errorf("k6: load template %s: %w", name, err)
	}

	stages, err := cfg.Stages()
	if err != nil {
		return "", err
	}
	data := scriptData{
		URL:                cfg.URL,
		PageType:           cfg.PageType,
		Environment:        cfg.Environment,
		Mode:               cfg.Mode,
		Stages:             stages,
		Thresholds:         cfg.Thresholds(),
		ProductID:          cfg.ProductID,
		ProductAttributeID: cfg.ProductAttributeID,
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("k6: render template %s: %w", name, err)
	}
	return sb.String(), nil
}

// GenerateToFile renders the script and writes it to path, creating
// parent directories as needed.
func (g *Generator) GenerateToFile(cfg LoadTestConfig, path string) error {
	script, err := g.Generate(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("k6: create script directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(script), 0o644); err != nil {
		return fmt.Errorf("k6: write script: %w", err)
	}
	return nil
}

// ValidateTemplates reports, per page type, whether its template
// exists and parses.
func (g *Generator) ValidateTemplates() map[string]bool {
	out := make(map[string]bool, len(templatePageTypes))
	for _, pt := range templatePageTypes {
		_, err := template.ParseFiles(filepath.Join(g.dir, templateName(pt)))
		out[pt] = err == nil
	}
	return out
}

// Templates lists the template files present in the directory.
func (g *Generator) Templates() []string {
	matches, err := filepath.Glob(filepath.Join(g.dir, "template_*.js"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, filepath.Base(m))
	}
	return names
}
