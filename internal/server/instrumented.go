package server

import (
	"context"
	"time"

	"golang.org/x/oauth2"

	"github.com/lunarweb/schedcal/internal/calendar"
	"github.com/lunarweb/schedcal/internal/google"
	"github.com/lunarweb/schedcal/internal/instrumentation"
)

// InstrumentedCalendar wraps a CalendarAPI and records per-operation metrics.
type InstrumentedCalendar struct {
	cal     CalendarAPI
	metrics *instrumentation.Metrics
}

// NewInstrumentedCalendar wraps cal with metrics recording. If metrics is nil
// the wrapper is a passthrough.
func NewInstrumentedCalendar(cal CalendarAPI, metrics *instrumentation.Metrics) *InstrumentedCalendar {
	return &InstrumentedCalendar{cal: cal, metrics: metrics}
}

func (c *InstrumentedCalendar) BusyIntervals(ctx context.Context, calendarID string, day time.Time, loc *time.Location) ([]calendar.BusyInterval, error) {
	start := time.Now()
	busy, err := c.cal.BusyIntervals(ctx, calendarID, day, loc)
	c.record(ctx, "busy_intervals", err, time.Since(start))
	return busy, err
}

func (c *InstrumentedCalendar) CreateEvent(ctx context.Context, calendarID string, req calendar.EventRequest, loc *time.Location) (*calendar.EventSummary, error) {
	start := time.Now()
	created, err := c.cal.CreateEvent(ctx, calendarID, req, loc)
	c.record(ctx, "create_event", err, time.Since(start))
	return created, err
}

func (c *InstrumentedCalendar) record(ctx context.Context, operation string, err error, duration time.Duration) {
	result := instrumentation.ResultSuccess
	if err != nil {
		result = instrumentation.ResultError
	}
	c.metrics.RecordCalendarOperation(ctx, operation, result, duration)
}

// InstrumentedTokenProvider wraps a TokenProvider and records exchange outcomes.
type InstrumentedTokenProvider struct {
	tokens  google.TokenProvider
	metrics *instrumentation.Metrics
}

// NewInstrumentedTokenProvider wraps tokens with metrics recording. If metrics
// is nil the wrapper is a passthrough.
func NewInstrumentedTokenProvider(tokens google.TokenProvider, metrics *instrumentation.Metrics) *InstrumentedTokenProvider {
	return &InstrumentedTokenProvider{tokens: tokens, metrics: metrics}
}

func (p *InstrumentedTokenProvider) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.tokens.AccessToken(ctx)
	result := instrumentation.ResultSuccess
	if err != nil {
		result = instrumentation.ResultError
	}
	p.metrics.RecordTokenExchange(ctx, result)
	return tok, err
}
