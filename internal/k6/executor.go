package k6

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/promoload/promoload/internal/score"
)

const errorMessageLimit = 200

// Executor runs k6 scripts through the k6 binary.
type Executor struct {
	binary  string
	timeout time.Duration
}

// NewExecutor returns an Executor for the given binary path.
// timeout bounds one whole run, including ramp-down.
func NewExecutor(binary string, timeout time.Duration) *Executor {
	if binary == "" {
		binary = "k6"
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &Executor{binary: binary, timeout: timeout}
}

// Available reports whether the k6 binary can be invoked.
func (e *Executor) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, e.binary, "version").Run() == nil
}

// Execute runs a generated script and returns the run outcome.
//
// k6 exits non-zero both for real failures and for threshold breaches;
// the two are told apart by the exit code and stderr. A breach still
// counts as a successful run with ThresholdFailed set, since its
// metrics are the interesting part. Only unrecoverable conditions
// (missing script, unusable binary) surface as an error; execution
// failures come back as a failed Result carrying the k6 error message.
func (e *Executor) Execute(ctx context.Context, scriptPath string, cfg LoadTestConfig) (*score.Result, error) {
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, fmt.Errorf("k6: script not found: %w", err)
	}

	out, err := os.CreateTemp("", "k6-out-*.json")
	if err != nil {
		return nil, fmt.Errorf("k6: create output file: %w", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	res := &score.Result{
		URL:         cfg.URL,
		PageType:    cfg.PageType,
		Environment: cfg.Environment,
		Intensity:   cfg.Intensity,
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.binary, "run", "--out", "json="+outPath, scriptPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	slog.Info("k6: executing load test",
		"script", scriptPath,
		"url", cfg.URL,
		"environment", cfg.Environment,
		"intensity", cfg.Intensity)

	start := time.Now()
	runErr := cmd.Run()
	res.DurationSeconds = time.Since(start).Seconds()

	if runCtx.Err() == context.DeadlineExceeded {
		res.Success = false
		res.DurationSeconds = e.timeout.Seconds()
		res.ErrorMessage = fmt.Sprintf("execution timed out after %s", e.timeout)
		slog.Error("k6: execution timed out", "timeout", e.timeout)
		return res, nil
	}

	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("k6: start %s: %w", e.binary, runErr)
		}
	}

	// Threshold breaches exit non-zero too. Codes >= 100 and stderr
	// error lines mean the run itself broke.
	if exitCode != 0 && (exitCode >= 100 || strings.Contains(stderr.String(), "ERRO")) {
		res.Success = false
		res.ErrorMessage = extractErrorMessage(stderr.String())
		slog.Error("k6: execution failed", "exit_code", exitCode, "error", res.ErrorMessage)
		return res, nil
	}

	metrics, err := ParseMetricsFile(outPath)
	if err != nil {
		res.Success = false
		res.ErrorMessage = err.Error()
		slog.Error("k6: output unusable", "error", err)
		return res, nil
	}

	res.Success = true
	res.ThresholdFailed = exitCode != 0
	res.Metrics = metrics
	slog.Info("k6: load test finished",
		"duration_seconds", res.DurationSeconds,
		"threshold_failed", res.ThresholdFailed,
		"requests", metrics.TotalCount,
		"p95_ms", metrics.DurationP95Ms)
	return res, nil
}

// extractErrorMessage pulls the first error line out of k6 stderr,
// capped so log noise never floods reports.
func extractErrorMessage(stderr string) string {
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "ERRO") {
			parts := strings.Split(line, "ERRO")
			line = strings.TrimSpace(parts[len(parts)-1])
		} else if !strings.Contains(strings.ToLower(line), "error") {
			continue
		}
		if len(line) > errorMessageLimit {
			line = line[:errorMessageLimit]
		}
		return line
	}
	return "k6 execution failed (see logs for details)"
}
