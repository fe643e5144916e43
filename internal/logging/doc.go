// Package logging provides structured logging utilities for the schedcal service.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (email anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "calendar.busy_intervals")
//	logger.Info("listed busy intervals",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("event booked",
//	    logging.UserHash(attendee))
//
// # Security Considerations
//
// This package is designed with security in mind:
//   - Attendee emails are hashed to prevent PII leakage while allowing correlation
//   - Access tokens and signed assertions are never logged directly
package logging
