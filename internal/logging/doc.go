// Package logging assembles structured slog loggers and formatting helpers used
// across replay commands.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so fetch runs automatically tag
// log lines with run and match identifiers. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
