// Package httpserver runs the operational HTTP endpoints: prometheus
// metrics and a health report carrying circuit breaker states.
package httpserver
