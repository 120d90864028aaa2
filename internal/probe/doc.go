// Package probe samples a server's Prometheus metrics endpoint around
// a load-test run. A snapshot before and after the run, diffed, shows
// what the test cost the target in CPU, memory and served requests —
// context the k6 client-side numbers alone cannot give.
package probe
