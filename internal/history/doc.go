// Package history persists analyzed run results as JSON files so past
// runs can be listed and compared. Files older than the configured
// retention are pruned on demand.
package history
