// Package cmd implements the command-line interface for schedcal.
//
// This package provides the following commands:
//   - serve: Start the HTTP booking service
//   - slots: Print free slots for a date without starting the service
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
