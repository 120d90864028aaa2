// Package report renders an analyzed run into human-readable reports.
//
// The markdown renderer produces the full analysis document written
// for a non-technical audience (including a glossary); the PDF
// exporter produces a condensed version of the same content for
// distribution. Both read from the same Data value and never mutate it.
package report
