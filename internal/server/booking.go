package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lunarweb/schedcal/internal/calendar"
	"github.com/lunarweb/schedcal/internal/google"
	"github.com/lunarweb/schedcal/internal/instrumentation"
	"github.com/lunarweb/schedcal/internal/logging"
	"github.com/lunarweb/schedcal/internal/schedule"
)

// Action names accepted by the booking endpoint.
const (
	ActionGetAvailableSlots = "getAvailableSlots"
	ActionCreateEvent       = "createEvent"
)

// dateLayout is the wire format of the target day.
const dateLayout = "2006-01-02"

// CalendarAPI is the upstream calendar surface the booking handlers use.
// It is satisfied by *calendar.Client and mocked in tests.
type CalendarAPI interface {
	BusyIntervals(ctx context.Context, calendarID string, day time.Time, loc *time.Location) ([]calendar.BusyInterval, error)
	CreateEvent(ctx context.Context, calendarID string, req calendar.EventRequest, loc *time.Location) (*calendar.EventSummary, error)
}

// BookingServerConfig holds the dependencies of the booking endpoint.
type BookingServerConfig struct {
	// CalendarID is the calendar slots are computed for and events are
	// booked against.
	CalendarID string

	// Hours is the working-hours policy driving slot computation.
	Hours schedule.WorkingHours

	// Tokens supplies access tokens; every request starts with a token
	// acquisition so auth failures short-circuit before any calendar call.
	Tokens google.TokenProvider

	// Calendar is the upstream calendar client.
	Calendar CalendarAPI

	// Logger is used for request logging (default: slog.Default()).
	Logger *slog.Logger

	// Metrics records request observability metrics (optional).
	Metrics *instrumentation.Metrics
}

// BookingServer dispatches booking actions over HTTP.
type BookingServer struct {
	calendarID string
	hours      schedule.WorkingHours
	tokens     google.TokenProvider
	cal        CalendarAPI
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// NewBookingServer creates a BookingServer from the given configuration.
func NewBookingServer(cfg BookingServerConfig) (*BookingServer, error) {
	if cfg.CalendarID == "" {
		return nil, fmt.Errorf("calendar ID is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token provider is required")
	}
	if cfg.Calendar == nil {
		return nil, fmt.Errorf("calendar client is required")
	}
	if err := cfg.Hours.Validate(); err != nil {
		return nil, fmt.Errorf("invalid working hours: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &BookingServer{
		calendarID: cfg.CalendarID,
		hours:      cfg.Hours,
		tokens:     cfg.Tokens,
		cal:        cfg.Calendar,
		logger:     logger,
		metrics:    cfg.Metrics,
	}, nil
}

// Wire DTOs for the booking endpoint.

type actionRequest struct {
	Action    string     `json:"action"`
	Date      string     `json:"date,omitempty"`
	EventData *eventData `json:"eventData,omitempty"`
}

type eventData struct {
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Attendees   []string `json:"attendees"`
}

type slotJSON struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type slotsResponse struct {
	Success bool       `json:"success"`
	Slots   []slotJSON `json:"slots"`
}

type eventJSON struct {
	ID          string   `json:"id"`
	Summary     string   `json:"summary"`
	Description string   `json:"description,omitempty"`
	Status      string   `json:"status,omitempty"`
	HTMLLink    string   `json:"htmlLink,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Attendees   []string `json:"attendees,omitempty"`
}

type eventResponse struct {
	Success bool      `json:"success"`
	Event   eventJSON `json:"event"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the HTTP handler for the booking endpoint.
func (s *BookingServer) Handler() http.Handler {
	return http.HandlerFunc(s.serveHTTP)
}

func (s *BookingServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	setCORSHeaders(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.finish(w, r, "invalid", http.StatusBadRequest, start, err, errorResponse{Error: "Invalid action"})
		return
	}

	switch req.Action {
	case ActionGetAvailableSlots:
		status, body, err := s.getAvailableSlots(r.Context(), req)
		s.finish(w, r, req.Action, status, start, err, body)
	case ActionCreateEvent:
		status, body, err := s.createEvent(r.Context(), req)
		s.finish(w, r, req.Action, status, start, err, body)
	default:
		s.finish(w, r, "invalid", http.StatusBadRequest, start, nil, errorResponse{Error: "Invalid action"})
	}
}

// getAvailableSlots runs the Signer -> Fetcher -> Allocator chain.
func (s *BookingServer) getAvailableSlots(ctx context.Context, req actionRequest) (int, interface{}, error) {
	day, err := time.ParseInLocation(dateLayout, req.Date, s.hours.Location)
	if err != nil {
		err = fmt.Errorf("invalid date %q: %w", req.Date, err)
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	// Credential-signer step: auth failures surface here, before any
	// calendar call is attempted.
	if _, err := s.tokens.AccessToken(ctx); err != nil {
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	busy, err := s.cal.BusyIntervals(ctx, s.calendarID, day, s.hours.Location)
	if err != nil {
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	slots := schedule.FreeSlots(day, busy, s.hours)

	resp := slotsResponse{Success: true, Slots: make([]slotJSON, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, slotJSON{
			StartTime: slot.Start.Format(time.RFC3339),
			EndTime:   slot.End.Format(time.RFC3339),
		})
	}
	return http.StatusOK, resp, nil
}

// createEvent runs the Signer -> Booker chain.
func (s *BookingServer) createEvent(ctx context.Context, req actionRequest) (int, interface{}, error) {
	if req.EventData == nil {
		err := fmt.Errorf("eventData is required")
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	startTime, err := time.Parse(time.RFC3339, req.EventData.StartTime)
	if err != nil {
		err = fmt.Errorf("invalid startTime %q: %w", req.EventData.StartTime, err)
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}
	endTime, err := time.Parse(time.RFC3339, req.EventData.EndTime)
	if err != nil {
		err = fmt.Errorf("invalid endTime %q: %w", req.EventData.EndTime, err)
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	if _, err := s.tokens.AccessToken(ctx); err != nil {
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	created, err := s.cal.CreateEvent(ctx, s.calendarID, calendar.EventRequest{
		Start:       startTime,
		End:         endTime,
		Summary:     req.EventData.Summary,
		Description: req.EventData.Description,
		Attendees:   req.EventData.Attendees,
	}, s.hours.Location)
	if err != nil {
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}, err
	}

	event := eventJSON{
		ID:          created.ID,
		Summary:     created.Summary,
		Description: created.Description,
		Status:      created.Status,
		HTMLLink:    created.HTMLLink,
		StartTime:   created.Start.Format(time.RFC3339),
		EndTime:     created.End.Format(time.RFC3339),
	}
	for _, att := range created.Attendees {
		event.Attendees = append(event.Attendees, att.Email)
	}

	return http.StatusOK, eventResponse{Success: true, Event: event}, nil
}

// finish writes the response and records logging and metrics for the request.
func (s *BookingServer) finish(w http.ResponseWriter, r *http.Request, action string, status int, start time.Time, err error, body interface{}) {
	writeJSON(w, status, body)

	duration := time.Since(start)
	result := logging.StatusSuccess
	if status >= 400 {
		result = logging.StatusError
	}

	logger := logging.WithAction(s.logger, action)
	if err != nil {
		logger.Error("request failed",
			logging.Status(result),
			slog.Int("http_status", status),
			slog.Duration(logging.KeyDuration, duration),
			logging.Err(err))
	} else {
		logger.Info("request handled",
			logging.Status(result),
			slog.Int("http_status", status),
			slog.Duration(logging.KeyDuration, duration))
	}

	s.metrics.RecordHTTPRequest(r.Context(), action, status, duration)
}

// setCORSHeaders applies the permissive CORS policy of the booking endpoint.
// The endpoint is called directly from browsers on the public site.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *BookingServer) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
