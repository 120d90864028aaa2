// Package k6 generates and executes k6 load-test scripts.
//
// A LoadTestConfig pins the target, environment, intensity and mode of
// one run; intensity maps to virtual-user ramp stages and environment
// to safety thresholds embedded in the script. Generator renders the
// script from per-page-type templates, Executor shells out to the k6
// binary and turns its NDJSON output into a score.Result.
package k6
