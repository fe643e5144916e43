// Package calendar provides a client for interacting with the Google Calendar API.
//
// This package covers the two upstream operations the scheduling engine
// needs: reading the busy intervals of a calendar for a single day, and
// creating an event with attendee notification. Authentication is injected
// as an oauth2.TokenSource, typically backed by the service-account signer
// in the google package.
//
// Example usage:
//
//	src, err := google.NewTokenSource(key, google.TokenSourceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := calendar.NewClient(ctx, src)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	busy, err := client.BusyIntervals(ctx, "primary", day, loc)
package calendar
