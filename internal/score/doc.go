// Package score converts raw load-test telemetry into graded verdicts.
//
// thresholds.go holds the Thresholds value object and the pure grading
// curves: five half-open bands per dimension with a linear sub-score inside
// each band (A 90–100, B 80–89, C 70–79, D 60–69, F 0–59), so scores stay
// continuous and monotone even as letters step discretely.
//
// analyzer.go provides the Analyzer that populates a Result with the three
// grades and the capacity estimate. recommend.go derives the prioritized
// recommendation list from an analyzed Result.
//
// Everything here is pure and synchronous: no I/O, no shared mutable state.
// An Analyzer may be used concurrently for independent Results.
package score
