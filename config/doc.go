// Package config loads solver-dispatch settings from an optional .env file,
// an optional config.yaml and SOLVER_* environment variables, in increasing
// order of precedence, and validates them against their allowed ranges.
package config
