// Package instrumentation wires OpenTelemetry metrics and tracing for the
// schedcal service.
//
// A Provider owns the meter and tracer providers. Metrics export through
// Prometheus by default (scraped from the dedicated metrics server), or
// through OTLP/stdout when configured via environment variables. Tracing is
// off by default and can be enabled with an OTLP or stdout exporter.
//
// The Metrics recorder covers the service's operational surface: booking
// HTTP requests, upstream calendar API operations, and token exchanges. All
// recording methods are nil-safe so call sites need no instrumentation
// guards.
package instrumentation
