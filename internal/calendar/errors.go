package calendar

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// UpstreamError reports a failed calendar read. For HTTP-level rejections it
// carries the upstream status and response body.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar: %s returned status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("calendar: %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// BookingError reports a failed event creation. The upstream error body is
// preserved for diagnosability.
type BookingError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *BookingError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("calendar: event creation returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("calendar: event creation failed: %v", e.Err)
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

// newUpstreamError wraps a read failure, extracting status and body from
// googleapi errors.
func newUpstreamError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &UpstreamError{Op: op, StatusCode: gerr.Code, Body: gerr.Body, Err: err}
	}
	return &UpstreamError{Op: op, Err: err}
}

// newBookingError wraps an event-creation failure, extracting status and
// body from googleapi errors.
func newBookingError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &BookingError{StatusCode: gerr.Code, Body: gerr.Body, Err: err}
	}
	return &BookingError{Err: err}
}
