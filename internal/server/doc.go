// Package server exposes the HTTP boundary of the scheduling engine.
//
// The booking endpoint is a single JSON action dispatcher: POST / with
// {"action": "getAvailableSlots", "date": "YYYY-MM-DD"} returns the free
// slots of that day, and {"action": "createEvent", "eventData": {...}} books
// an event. Handlers are stateless and safe to run concurrently; every
// request obtains fresh credentials and fresh busy data, and failures are
// converted to a JSON error envelope at this boundary.
//
// A slot returned by getAvailableSlots can still be double-booked if two
// clients fetch overlapping free windows and both book before the upstream
// calendar reflects either event. The upstream calendar remains the only
// source of truth; this service performs no local locking or reservation.
//
// The package also provides health probes for Kubernetes and a dedicated
// Prometheus metrics server.
package server
