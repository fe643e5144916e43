package schedule

import (
	"time"

	"github.com/lunarweb/schedcal/internal/calendar"
)

// Slot is a free, bookable time window of exactly the policy's slot
// duration. Slots are half-open: [Start, End).
type Slot struct {
	Start time.Time
	End   time.Time
}

// FreeSlots sweeps the working window of day and returns the candidate
// slots that overlap no busy interval, earliest first. Candidates tile the
// window contiguously from the day start; a trailing window shorter than the
// slot duration is dropped. Busy intervals may be unsorted, overlapping,
// or entirely outside the window.
func FreeSlots(day time.Time, busy []calendar.BusyInterval, hours WorkingHours) []Slot {
	dayStart, dayEnd := hours.Window(day)

	var slots []Slot
	for cursor := dayStart; !cursor.Add(hours.SlotDuration).After(dayEnd); cursor = cursor.Add(hours.SlotDuration) {
		candidateEnd := cursor.Add(hours.SlotDuration)
		if !overlapsAny(cursor, candidateEnd, busy) {
			slots = append(slots, Slot{Start: cursor, End: candidateEnd})
		}
	}
	return slots
}

// overlapsAny reports whether the half-open candidate [start, end) overlaps
// any busy interval. Touching boundaries do not overlap.
func overlapsAny(start, end time.Time, busy []calendar.BusyInterval) bool {
	for _, b := range busy {
		if start.Before(b.End) && end.After(b.Start) {
			return true
		}
	}
	return false
}
