package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Result values for calendar operation and token exchange metrics.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics provides a recorder for the service's observability metrics.
// The zero value is a no-op recorder, so callers never need to nil-check.
type Metrics struct {
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	calendarOpsTotal    metric.Int64Counter
	calendarOpDuration  metric.Float64Histogram
	tokenExchangesTotal metric.Int64Counter
}

// NewMetrics creates all metric instruments using the provided meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"booking_http_requests_total",
		metric.WithDescription("Total number of booking HTTP requests by action and status code"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking_http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"booking_http_request_duration_seconds",
		metric.WithDescription("Duration of booking HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking_http_request_duration_seconds histogram: %w", err)
	}

	m.calendarOpsTotal, err = meter.Int64Counter(
		"calendar_api_operations_total",
		metric.WithDescription("Total number of Google Calendar API operations by operation and result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operations_total counter: %w", err)
	}

	m.calendarOpDuration, err = meter.Float64Histogram(
		"calendar_api_operation_duration_seconds",
		metric.WithDescription("Duration of Google Calendar API operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_api_operation_duration_seconds histogram: %w", err)
	}

	m.tokenExchangesTotal, err = meter.Int64Counter(
		"token_exchange_total",
		metric.WithDescription("Total number of service account token exchanges by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token_exchange_total counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records a completed booking HTTP request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, action string, status int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", strconv.Itoa(status)),
	)

	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCalendarOperation records a Google Calendar API call.
func (m *Metrics) RecordCalendarOperation(ctx context.Context, operation, result string, duration time.Duration) {
	if m == nil || m.calendarOpsTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	)

	m.calendarOpsTotal.Add(ctx, 1, attrs)
	m.calendarOpDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordTokenExchange records the outcome of a service account token exchange.
func (m *Metrics) RecordTokenExchange(ctx context.Context, result string) {
	if m == nil || m.tokenExchangesTotal == nil {
		return
	}

	m.tokenExchangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}
