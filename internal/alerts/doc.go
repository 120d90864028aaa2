// Package alerts evaluates rule conditions against an analyzed run and
// delivers webhook notifications for the rules that fire.
package alerts
