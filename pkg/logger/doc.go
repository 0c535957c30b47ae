// Package logger provides structured logging with configurable log levels.
// It wraps the standard log/slog package: JSON output in production, text
// output elsewhere, every record tagged with the environment.
package logger
