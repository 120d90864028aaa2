package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/promoload/promoload/internal/alerts"
	"github.com/promoload/promoload/internal/config"
	"github.com/promoload/promoload/internal/detect"
	"github.com/promoload/promoload/internal/history"
	"github.com/promoload/promoload/internal/k6"
	"github.com/promoload/promoload/internal/probe"
	"github.com/promoload/promoload/internal/promo"
	"github.com/promoload/promoload/internal/report"
	"github.com/promoload/promoload/internal/score"
)

type options struct {
	configPath string
	env        string
	intensity  string
	mode       string
	outputDir  string
	probeURL   string
	repeat     time.Duration
	noScrape   bool
	checkDeps  bool
	verbose    bool
	url        string
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	flag.StringVar(&opts.env, "env", k6.EnvPreprod, "target environment: prod | preprod")
	flag.StringVar(&opts.intensity, "intensity", k6.IntensityMedium, "test intensity: light | medium | heavy")
	flag.StringVar(&opts.mode, "mode", k6.ModeReadOnly, "test mode: read_only | full")
	flag.StringVar(&opts.outputDir, "output", "", "report output directory (overrides config)")
	flag.StringVar(&opts.probeURL, "probe", "", "Prometheus endpoint of the target server (overrides config)")
	flag.DurationVar(&opts.repeat, "repeat", 0, "re-run the analysis at this interval (0 = run once)")
	flag.BoolVar(&opts.noScrape, "no-scrape", false, "skip promotion scraping")
	flag.BoolVar(&opts.checkDeps, "check-deps", false, "check dependencies and exit")
	flag.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	flag.Parse()
	opts.url = flag.Arg(0)

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("promoload starting", "config", opts.configPath)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		return 1
	}
	applyOverrides(cfg, opts)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if opts.checkDeps {
		return checkDependencies(ctx, cfg)
	}

	if opts.url == "" {
		fmt.Fprintln(os.Stderr, "usage: promoload [flags] <url>   (or -check-deps)")
		flag.PrintDefaults()
		return 1
	}
	if !detect.IsValidStoreURL(opts.url) {
		slog.Error("invalid target url", "url", opts.url)
		return 1
	}
	if err := checkProdWindow(cfg, opts); err != nil {
		slog.Error("production constraint", "err", err)
		return 1
	}

	if opts.repeat > 0 {
		return runRepeating(ctx, cfg, opts)
	}

	res, err := runOnce(ctx, cfg, opts)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		return 1
	}
	if !res.Success {
		return 1
	}
	return 0
}

// loadConfig reads the config file, falling back to built-in defaults
// when the default path does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, os.ErrNotExist) && path == "config.yaml" {
		slog.Info("no config file found, using defaults")
		return config.Default(), nil
	}
	return nil, err
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.outputDir != "" {
		cfg.Output.Dir = opts.outputDir
	}
	if opts.probeURL != "" {
		cfg.Probe.Endpoint = opts.probeURL
	}
	if opts.noScrape {
		cfg.Scrape.Enabled = false
	}
}

// checkProdWindow refuses full-mode production runs outside the
// configured maintenance window. Runs with no window configured only
// get a warning, matching how operators actually use the tool.
func checkProdWindow(cfg *config.Config, opts options) error {
	if opts.env != k6.EnvProd || opts.mode != k6.ModeFull {
		return nil
	}
	start, end := cfg.Prod.WindowStart, cfg.Prod.WindowEnd
	if start == "" || end == "" {
		slog.Warn("full mode in prod without a configured run window, proceeding")
		return nil
	}
	if !withinWindow(start, end, time.Now()) {
		return fmt.Errorf("full mode in prod is only allowed between %s and %s", start, end)
	}
	return nil
}

// withinWindow reports whether now falls inside the HH:MM window.
// A window that crosses midnight (e.g. 23:00–02:00) is supported.
func withinWindow(start, end string, now time.Time) bool {
	s, err1 := time.Parse("15:04", start)
	e, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		slog.Warn("unparseable prod window, ignoring", "start", start, "end", end)
		return true
	}
	cur := now.Hour()*60 + now.Minute()
	sm := s.Hour()*60 + s.Minute()
	em := e.Hour()*60 + e.Minute()
	if sm <= em {
		return cur >= sm && cur < em
	}
	return cur >= sm || cur < em
}

func checkDependencies(ctx context.Context, cfg *config.Config) int {
	ok := true

	exec := k6.NewExecutor(cfg.K6.Binary, cfg.K6.Timeout)
	if exec.Available(ctx) {
		fmt.Println("ok   k6: available")
	} else {
		fmt.Println("MISS k6: not found, install it from https://k6.io/docs/get-started/installation/")
		ok = false
	}

	gen, err := k6.NewGenerator(cfg.K6.TemplatesDir)
	if err != nil {
		fmt.Printf("MISS templates: %v\n", err)
		ok = false
	} else {
		for pt, valid := range gen.ValidateTemplates() {
			if valid {
				fmt.Printf("ok   template %s\n", pt)
			} else {
				fmt.Printf("MISS template %s\n", pt)
				ok = false
			}
		}
	}

	if !ok {
		return 1
	}
	return 0
}

// runRepeating re-runs the analysis on a fixed interval, hot-reloading
// the config file between runs.
func runRepeating(ctx context.Context, cfg *config.Config, opts options) int {
	var mu sync.Mutex
	current := cfg

	go func() {
		err := config.Watch(ctx, opts.configPath, func(updated *config.Config) {
			applyOverrides(updated, opts)
			mu.Lock()
			current = updated
			mu.Unlock()
			slog.Info("config hot-reloaded")
		})
		if err != nil {
			slog.Warn("config watcher stopped", "err", err)
		}
	}()

	slog.Info("repeat mode", "interval", opts.repeat)
	ticker := time.NewTicker(opts.repeat)
	defer ticker.Stop()

	for {
		mu.Lock()
		c := current
		mu.Unlock()
		if _, err := runOnce(ctx, c, opts); err != nil {
			slog.Error("analysis failed", "err", err)
		}

		select {
		case <-ctx.Done():
			slog.Info("promoload shutting down")
			return 0
		case <-ticker.C:
		}
	}
}

// runOnce executes the full pipeline for one URL: detect the page
// type, scrape promotions, generate and run the k6 script, analyze
// the results, write reports, persist history and evaluate alerts.
func runOnce(ctx context.Context, cfg *config.Config, opts options) (*score.Result, error) {
	runID := uuid.NewString()
	slog.Info("starting analysis", "run_id", runID, "url", opts.url)

	// Page type: URL patterns first, DOM inspection as fallback.
	det, err := detect.FromURL(opts.url)
	if err != nil {
		return nil, err
	}
	if det.PageType == detect.PageUnknown && cfg.Scrape.Enabled {
		if domDet, err := detect.FromDOM(ctx, nil, opts.url); err == nil && domDet.PageType != detect.PageUnknown {
			det = domDet
		}
	}
	slog.Info("page type detected", "type", det.PageType, "method", det.Method, "confidence", det.Confidence)

	var promotions *promo.Promotions
	if cfg.Scrape.Enabled {
		scraper := promo.NewScraper(cfg.Scrape.Headless, cfg.Scrape.PageTimeout)
		p := scraper.Scrape(ctx, opts.url, det.PageType)
		promotions = &p
	}

	testCfg := k6.LoadTestConfig{
		URL:         opts.url,
		PageType:    k6.TemplatePage(det.PageType),
		Environment: opts.env,
		Intensity:   opts.intensity,
		Mode:        opts.mode,
		ProductID:   det.ProductID,
	}
	if err := testCfg.Validate(); err != nil {
		return nil, err
	}

	gen, err := k6.NewGenerator(cfg.K6.TemplatesDir)
	if err != nil {
		return nil, err
	}
	scriptDir, err := os.MkdirTemp("", "promoload-")
	if err != nil {
		return nil, fmt.Errorf("create script directory: %w", err)
	}
	defer os.RemoveAll(scriptDir)

	scriptPath := filepath.Join(scriptDir, "script.js")
	if err := gen.GenerateToFile(testCfg, scriptPath); err != nil {
		return nil, err
	}

	var probeBefore, probeAfter *probe.Snapshot
	var prb *probe.Probe
	if cfg.Probe.Endpoint != "" {
		prb = probe.New(cfg.Probe.Endpoint, cfg.Probe.Timeout)
		if snap, err := prb.Sample(ctx); err != nil {
			slog.Warn("pre-run probe failed", "err", err)
		} else {
			probeBefore = &snap
		}
	}

	exec := k6.NewExecutor(cfg.K6.Binary, cfg.K6.Timeout)
	res, err := exec.Execute(ctx, scriptPath, testCfg)
	if err != nil {
		return nil, err
	}

	if prb != nil && probeBefore != nil {
		if snap, err := prb.Sample(ctx); err != nil {
			slog.Warn("post-run probe failed", "err", err)
		} else {
			probeAfter = &snap
		}
	}

	analyzer := score.NewAnalyzer(cfg.Thresholds.Score())
	analyzer.Analyze(res)
	recs := analyzer.Recommendations(res)

	data := report.Data{
		RunID:           runID,
		GeneratedAt:     time.Now(),
		Result:          res,
		Recommendations: recs,
		Promotions:      promotions,
		ProbeBefore:     probeBefore,
		ProbeAfter:      probeAfter,
	}
	if err := writeReports(cfg, data); err != nil {
		return nil, err
	}

	if store, err := history.New(cfg.History.Dir, cfg.History.Retention); err != nil {
		slog.Warn("history store unavailable", "err", err)
	} else {
		if err := store.Put(runID, res); err != nil {
			slog.Warn("failed to save run history", "err", err)
		}
		if _, err := store.Prune(); err != nil {
			slog.Warn("history prune failed", "err", err)
		}
	}

	engine := alerts.New(cfg.Alerts)
	engine.Notify(engine.Evaluate(runID, res))

	printSummary(res)
	return res, nil
}

func writeReports(cfg *config.Config, data report.Data) error {
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if cfg.Output.Format == "markdown" || cfg.Output.Format == "both" {
		path := filepath.Join(cfg.Output.Dir, "report_"+data.RunID+".md")
		if err := os.WriteFile(path, []byte(report.Markdown(data)), 0o644); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
		slog.Info("report written", "path", path)
	}

	if cfg.Output.Format == "pdf" || cfg.Output.Format == "both" {
		pdfBytes, err := report.PDF(data)
		if err != nil {
			return err
		}
		path := filepath.Join(cfg.Output.Dir, "report_"+data.RunID+".pdf")
		if err := os.WriteFile(path, pdfBytes, 0o644); err != nil {
			return fmt.Errorf("write pdf report: %w", err)
		}
		slog.Info("report written", "path", path)
	}
	return nil
}

func printSummary(res *score.Result) {
	line := strings.Repeat("=", 60)
	fmt.Println(line)
	fmt.Println("  ANALYSIS COMPLETE")
	fmt.Println(line)
	if res.OverallGrade != nil {
		fmt.Printf("  Overall grade: %s\n", res.OverallGrade.Letter)
		fmt.Printf("  Score:         %.1f/100\n", res.OverallGrade.Score)
	}
	if res.MaxUsersEstimate > 0 {
		fmt.Printf("  Max users:     ~%d\n", res.MaxUsersEstimate)
	}
	if !res.Success {
		fmt.Printf("  Test failed:   %s\n", res.ErrorMessage)
	}
	fmt.Println(line)
}
