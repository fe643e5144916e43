package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/lunarweb/schedcal/internal/calendar"
	"github.com/lunarweb/schedcal/internal/schedule"
)

type fakeTokens struct {
	calls int
	err   error
}

func (f *fakeTokens) AccessToken(ctx context.Context) (*oauth2.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "test-token", Expiry: time.Now().Add(time.Hour)}, nil
}

type fakeCalendar struct {
	busyCalls   int
	createCalls int

	busy      []calendar.BusyInterval
	busyErr   error
	created   *calendar.EventSummary
	createErr error

	gotCalendarID string
	gotDay        time.Time
	gotRequest    calendar.EventRequest
}

func (f *fakeCalendar) BusyIntervals(ctx context.Context, calendarID string, day time.Time, loc *time.Location) ([]calendar.BusyInterval, error) {
	f.busyCalls++
	f.gotCalendarID = calendarID
	f.gotDay = day
	if f.busyErr != nil {
		return nil, f.busyErr
	}
	return f.busy, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, calendarID string, req calendar.EventRequest, loc *time.Location) (*calendar.EventSummary, error) {
	f.createCalls++
	f.gotCalendarID = calendarID
	f.gotRequest = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func testHours(t *testing.T) schedule.WorkingHours {
	t.Helper()
	hours, err := schedule.NewWorkingHours("09:00", "17:00", 30*time.Minute, "UTC")
	require.NoError(t, err)
	return hours
}

func newTestServer(t *testing.T, tokens *fakeTokens, cal *fakeCalendar) *BookingServer {
	t.Helper()
	srv, err := NewBookingServer(BookingServerConfig{
		CalendarID: "bookings@example.com",
		Hours:      testHours(t),
		Tokens:     tokens,
		Calendar:   cal,
		Logger:     slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return srv
}

func postAction(t *testing.T, srv *BookingServer, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewBookingServer_Validation(t *testing.T) {
	hours := testHours(t)

	tests := []struct {
		name        string
		cfg         BookingServerConfig
		errContains string
	}{
		{
			name:        "missing calendar ID",
			cfg:         BookingServerConfig{Hours: hours, Tokens: &fakeTokens{}, Calendar: &fakeCalendar{}},
			errContains: "calendar ID",
		},
		{
			name:        "missing token provider",
			cfg:         BookingServerConfig{CalendarID: "c", Hours: hours, Calendar: &fakeCalendar{}},
			errContains: "token provider",
		},
		{
			name:        "missing calendar client",
			cfg:         BookingServerConfig{CalendarID: "c", Hours: hours, Tokens: &fakeTokens{}},
			errContains: "calendar client",
		},
		{
			name:        "invalid working hours",
			cfg:         BookingServerConfig{CalendarID: "c", Tokens: &fakeTokens{}, Calendar: &fakeCalendar{}},
			errContains: "working hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBookingServer(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestBookingServer_InvalidAction(t *testing.T) {
	srv := newTestServer(t, &fakeTokens{}, &fakeCalendar{})

	rec := postAction(t, srv, map[string]string{"action": "deleteEverything"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid action", resp.Error)
}

func TestBookingServer_MalformedBody(t *testing.T) {
	srv := newTestServer(t, &fakeTokens{}, &fakeCalendar{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid action", resp.Error)
}

func TestBookingServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeTokens{}, &fakeCalendar{})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Empty(t, rec.Body.String())
}

func TestBookingServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeTokens{}, &fakeCalendar{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	// CORS headers are present on every response
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBookingServer_GetAvailableSlots(t *testing.T) {
	tokens := &fakeTokens{}
	cal := &fakeCalendar{
		busy: []calendar.BusyInterval{
			{
				Start: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC),
			},
		},
	}
	srv := newTestServer(t, tokens, cal)

	rec := postAction(t, srv, map[string]string{
		"action": ActionGetAvailableSlots,
		"date":   "2026-03-02",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp slotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	// 16 candidates between 09:00 and 17:00, one removed by the busy interval
	require.Len(t, resp.Slots, 15)
	assert.Equal(t, "2026-03-02T09:00:00Z", resp.Slots[0].StartTime)
	assert.Equal(t, "2026-03-02T09:30:00Z", resp.Slots[0].EndTime)
	for _, slot := range resp.Slots {
		assert.NotEqual(t, "2026-03-02T10:00:00Z", slot.StartTime)
	}

	assert.Equal(t, 1, tokens.calls)
	assert.Equal(t, 1, cal.busyCalls)
	assert.Equal(t, "bookings@example.com", cal.gotCalendarID)
}

func TestBookingServer_GetAvailableSlots_EmptySlotsArray(t *testing.T) {
	// A fully booked day returns an empty array, not null.
	var busy []calendar.BusyInterval
	busy = append(busy, calendar.BusyInterval{
		Start: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
	})
	srv := newTestServer(t, &fakeTokens{}, &fakeCalendar{busy: busy})

	rec := postAction(t, srv, map[string]string{
		"action": ActionGetAvailableSlots,
		"date":   "2026-03-02",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
}

func TestBookingServer_GetAvailableSlots_InvalidDate(t *testing.T) {
	tokens := &fakeTokens{}
	cal := &fakeCalendar{}
	srv := newTestServer(t, tokens, cal)

	rec := postAction(t, srv, map[string]string{
		"action": ActionGetAvailableSlots,
		"date":   "02/03/2026",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, tokens.calls)
	assert.Equal(t, 0, cal.busyCalls)
}

func TestBookingServer_GetAvailableSlots_AuthFailure(t *testing.T) {
	tokens := &fakeTokens{err: fmt.Errorf("token exchange failed: status 401")}
	cal := &fakeCalendar{}
	srv := newTestServer(t, tokens, cal)

	rec := postAction(t, srv, map[string]string{
		"action": ActionGetAvailableSlots,
		"date":   "2026-03-02",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "token exchange failed")

	// The upstream calendar is never consulted when auth fails.
	assert.Equal(t, 0, cal.busyCalls)
	assert.Equal(t, 0, cal.createCalls)
}

func TestBookingServer_GetAvailableSlots_UpstreamError(t *testing.T) {
	cal := &fakeCalendar{busyErr: fmt.Errorf("calendar list failed: status 403")}
	srv := newTestServer(t, &fakeTokens{}, cal)

	rec := postAction(t, srv, map[string]string{
		"action": ActionGetAvailableSlots,
		"date":   "2026-03-02",
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "status 403")
}

func TestBookingServer_CreateEvent(t *testing.T) {
	tokens := &fakeTokens{}
	cal := &fakeCalendar{
		created: &calendar.EventSummary{
			ID:       "evt123",
			Summary:  "Intro call",
			Status:   "confirmed",
			HTMLLink: "https://calendar.google.com/event?eid=evt123",
			Start:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			Attendees: []calendar.AttendeeInfo{
				{Email: "alice@example.com", ResponseStatus: "needsAction"},
			},
		},
	}
	srv := newTestServer(t, tokens, cal)

	rec := postAction(t, srv, map[string]interface{}{
		"action": ActionCreateEvent,
		"eventData": map[string]interface{}{
			"startTime":   "2026-03-02T09:00:00Z",
			"endTime":     "2026-03-02T09:30:00Z",
			"summary":     "Intro call",
			"description": "30 minute intro",
			"attendees":   []string{"alice@example.com"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, "evt123", resp.Event.ID)
	assert.Equal(t, "Intro call", resp.Event.Summary)
	assert.Equal(t, "confirmed", resp.Event.Status)
	assert.Equal(t, "2026-03-02T09:00:00Z", resp.Event.StartTime)
	assert.Equal(t, "2026-03-02T09:30:00Z", resp.Event.EndTime)
	assert.Equal(t, []string{"alice@example.com"}, resp.Event.Attendees)

	assert.Equal(t, 1, tokens.calls)
	require.Equal(t, 1, cal.createCalls)
	assert.Equal(t, "Intro call", cal.gotRequest.Summary)
	assert.Equal(t, "30 minute intro", cal.gotRequest.Description)
	assert.Equal(t, []string{"alice@example.com"}, cal.gotRequest.Attendees)
}

func TestBookingServer_CreateEvent_MissingEventData(t *testing.T) {
	cal := &fakeCalendar{}
	srv := newTestServer(t, &fakeTokens{}, cal)

	rec := postAction(t, srv, map[string]string{"action": ActionCreateEvent})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, cal.createCalls)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "eventData")
}

func TestBookingServer_CreateEvent_InvalidTimes(t *testing.T) {
	tests := []struct {
		name      string
		startTime string
		endTime   string
	}{
		{"bad start", "tomorrow 9am", "2026-03-02T09:30:00Z"},
		{"bad end", "2026-03-02T09:00:00Z", "half past nine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal := &fakeCalendar{}
			srv := newTestServer(t, &fakeTokens{}, cal)

			rec := postAction(t, srv, map[string]interface{}{
				"action": ActionCreateEvent,
				"eventData": map[string]interface{}{
					"startTime": tt.startTime,
					"endTime":   tt.endTime,
					"summary":   "Intro call",
				},
			})

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, 0, cal.createCalls)
		})
	}
}

func TestBookingServer_CreateEvent_AuthFailure(t *testing.T) {
	tokens := &fakeTokens{err: fmt.Errorf("token exchange failed: status 401")}
	cal := &fakeCalendar{}
	srv := newTestServer(t, tokens, cal)

	rec := postAction(t, srv, map[string]interface{}{
		"action": ActionCreateEvent,
		"eventData": map[string]interface{}{
			"startTime": "2026-03-02T09:00:00Z",
			"endTime":   "2026-03-02T09:30:00Z",
			"summary":   "Intro call",
		},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0, cal.createCalls)
}

func TestBookingServer_CreateEvent_UpstreamError(t *testing.T) {
	cal := &fakeCalendar{createErr: fmt.Errorf("calendar insert failed: status 409: conflict")}
	srv := newTestServer(t, &fakeTokens{}, cal)

	rec := postAction(t, srv, map[string]interface{}{
		"action": ActionCreateEvent,
		"eventData": map[string]interface{}{
			"startTime": "2026-03-02T09:00:00Z",
			"endTime":   "2026-03-02T09:30:00Z",
			"summary":   "Intro call",
		},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "status 409")
}
