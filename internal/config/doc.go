// Package config loads and validates the promoload YAML configuration.
//
// Load fills missing fields with defaults and enforces the structural
// constraints the rest of the tool trusts: ascending grading boundaries,
// 0–1 error rates, a positive safety margin. Watch provides fsnotify-based
// hot reload for the CLI's repeat mode; a failed reload keeps the previous
// config active.
package config
