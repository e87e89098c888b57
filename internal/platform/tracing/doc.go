// Package tracing installs the OpenTelemetry tracer provider that the action
// dispatcher records its spans on.
package tracing
