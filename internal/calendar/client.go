package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Google Calendar service
type Client struct {
	svc *calendar.Service
}

// NewClient creates a Calendar client authenticated by the given token
// source. Each outbound call pulls a token from the source, so a fresh
// source yields per-request credentials and a caching source reuses them.
func NewClient(ctx context.Context, tokens oauth2.TokenSource) (*Client, error) {
	if tokens == nil {
		return nil, fmt.Errorf("token source cannot be nil")
	}

	client := oauth2.NewClient(ctx, tokens)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{svc: svc}, nil
}

// dayBounds returns the inclusive bounds of day in loc:
// 00:00:00.000 through 23:59:59.999 local time.
func dayBounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := day.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// BusyIntervals returns the occupied time ranges of all events overlapping
// day in the given zone. Recurring events are expanded into concrete
// occurrences and results follow the upstream startTime ordering. Intervals
// are returned as-is: overlapping or adjacent ranges are not merged.
func (c *Client) BusyIntervals(ctx context.Context, calendarID string, day time.Time, loc *time.Location) ([]BusyInterval, error) {
	timeMin, timeMax := dayBounds(day, loc)

	events, err := c.svc.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, newUpstreamError("list events", err)
	}

	var busy []BusyInterval
	for _, event := range events.Items {
		if interval, ok := toBusyInterval(event, loc); ok {
			busy = append(busy, interval)
		}
	}

	return busy, nil
}

// CreateEvent books a new event on the calendar and notifies attendees.
// Start and end are tagged with the given zone. There is no idempotency key:
// a retried call creates a duplicate event, and conflict resolution stays
// with the upstream calendar.
func (c *Client) CreateEvent(ctx context.Context, calendarID string, req EventRequest, loc *time.Location) (*EventSummary, error) {
	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: loc.String(),
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: loc.String(),
		},
	}

	if len(req.Attendees) > 0 {
		var attendees []*calendar.EventAttendee
		for _, email := range req.Attendees {
			attendees = append(attendees, &calendar.EventAttendee{
				Email: email,
			})
		}
		event.Attendees = attendees
	}

	// Leaving Reminders unset keeps the calendar's default reminders.
	created, err := c.svc.Events.Insert(calendarID, event).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return nil, newBookingError(err)
	}

	summary := toEventSummary(created)
	return &summary, nil
}
