// Package schedule computes free, bookable meeting slots for a day.
//
// The allocator is a pure function: given a working-hours policy and the
// busy intervals of a calendar, it tiles the working window into
// fixed-duration candidate slots and keeps those that overlap no busy
// interval. Busy input may be unsorted and unmerged; a slot is entirely
// accepted or entirely rejected, never shrunk around a partial overlap.
package schedule
