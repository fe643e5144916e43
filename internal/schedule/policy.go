package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a "HH:MM" time of day.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// minutes returns the clock as minutes since midnight, for ordering.
func (c Clock) minutes() int {
	return c.Hour*60 + c.Minute
}

// String returns the clock in HH:MM form.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// at anchors the clock on the given calendar day in loc. On DST transition
// days this follows wall-clock semantics: the instant is whatever the zone
// maps that wall time to.
func (c Clock) at(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.In(loc).Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

// WorkingHours is the immutable scheduling policy: the bookable window of a
// day, the slot duration, and the zone all computations happen in.
type WorkingHours struct {
	DayStart     Clock
	DayEnd       Clock
	SlotDuration time.Duration
	Location     *time.Location
}

// NewWorkingHours builds and validates a policy from its string form.
func NewWorkingHours(dayStart, dayEnd string, slotDuration time.Duration, timezone string) (WorkingHours, error) {
	start, err := ParseClock(dayStart)
	if err != nil {
		return WorkingHours{}, fmt.Errorf("invalid day start: %w", err)
	}
	end, err := ParseClock(dayEnd)
	if err != nil {
		return WorkingHours{}, fmt.Errorf("invalid day end: %w", err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return WorkingHours{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	hours := WorkingHours{
		DayStart:     start,
		DayEnd:       end,
		SlotDuration: slotDuration,
		Location:     loc,
	}
	if err := hours.Validate(); err != nil {
		return WorkingHours{}, err
	}
	return hours, nil
}

// Validate checks the policy invariants.
func (w WorkingHours) Validate() error {
	if w.Location == nil {
		return fmt.Errorf("working hours require a timezone")
	}
	if w.DayStart.minutes() >= w.DayEnd.minutes() {
		return fmt.Errorf("day start %s must be before day end %s", w.DayStart, w.DayEnd)
	}
	if w.SlotDuration <= 0 {
		return fmt.Errorf("slot duration must be positive, got %s", w.SlotDuration)
	}
	return nil
}

// Window returns the working window of the given day as instants in the
// policy zone.
func (w WorkingHours) Window(day time.Time) (time.Time, time.Time) {
	return w.DayStart.at(day, w.Location), w.DayEnd.at(day, w.Location)
}
