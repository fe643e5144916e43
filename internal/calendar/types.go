package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// BusyInterval is a half-open time range [Start, End) occupied by an
// existing event. Intervals come back in the upstream API order and are not
// merged or deduplicated; consumers must tolerate overlap.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// EventRequest is the input for booking a calendar event.
type EventRequest struct {
	Start       time.Time
	End         time.Time
	Summary     string
	Description string
	Attendees   []string
}

// AttendeeInfo represents information about an event attendee
type AttendeeInfo struct {
	Email          string
	ResponseStatus string // "needsAction", "declined", "tentative", "accepted"
}

// EventSummary represents a simplified calendar event as confirmed upstream
type EventSummary struct {
	ID          string
	Summary     string
	Description string
	Status      string
	HTMLLink    string
	Start       time.Time
	End         time.Time
	Attendees   []AttendeeInfo
}

// toEventSummary converts a Google Calendar event to an EventSummary
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:          event.Id,
		Summary:     event.Summary,
		Description: event.Description,
		Status:      event.Status,
		HTMLLink:    event.HtmlLink,
	}

	// Parse start time
	if event.Start != nil {
		if event.Start.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.Start.DateTime); err == nil {
				summary.Start = t
			}
		} else if event.Start.Date != "" {
			if t, err := time.Parse("2006-01-02", event.Start.Date); err == nil {
				summary.Start = t
			}
		}
	}

	// Parse end time
	if event.End != nil {
		if event.End.DateTime != "" {
			if t, err := time.Parse(time.RFC3339, event.End.DateTime); err == nil {
				summary.End = t
			}
		} else if event.End.Date != "" {
			if t, err := time.Parse("2006-01-02", event.End.Date); err == nil {
				summary.End = t
			}
		}
	}

	// Attendees
	for _, att := range event.Attendees {
		summary.Attendees = append(summary.Attendees, AttendeeInfo{
			Email:          att.Email,
			ResponseStatus: att.ResponseStatus,
		})
	}

	return summary
}

// toBusyInterval extracts the occupied time range of an event. DateTime
// fields are preferred; date-only (all-day) events widen to full days at
// local midnight in loc. Returns false for events without usable times.
func toBusyInterval(event *calendar.Event, loc *time.Location) (BusyInterval, bool) {
	if event == nil {
		return BusyInterval{}, false
	}

	start, startOK := parseEventTime(event.Start, loc)
	if !startOK {
		return BusyInterval{}, false
	}

	end, endOK := parseEventTime(event.End, loc)
	if !endOK {
		// All-day events carry an exclusive end date; a missing end still
		// blocks the full day.
		end = start.AddDate(0, 0, 1)
	}

	if !end.After(start) {
		return BusyInterval{}, false
	}

	return BusyInterval{Start: start, End: end}, true
}

// parseEventTime resolves an EventDateTime, preferring DateTime over the
// all-day Date form. All-day dates resolve to local midnight in loc.
func parseEventTime(edt *calendar.EventDateTime, loc *time.Location) (time.Time, bool) {
	if edt == nil {
		return time.Time{}, false
	}
	if edt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, edt.DateTime); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if edt.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", edt.Date, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
