package domain

import (
	"fmt"
	"time"
)

// TimeWindow is a start instant plus a duration. It describes both an open
// candidate slot and the interval occupied by an existing booking.
type TimeWindow struct {
	Start           time.Time
	DurationMinutes int
}

// NewTimeWindow creates a time window
func NewTimeWindow(start time.Time, durationMinutes int) TimeWindow {
	return TimeWindow{Start: start, DurationMinutes: durationMinutes}
}

// End returns the exclusive end instant of the window
func (w TimeWindow) End() time.Time {
	return w.Start.Add(time.Duration(w.DurationMinutes) * time.Minute)
}

// Overlaps returns true if the two windows strictly overlap.
// Touching boundaries do not count as an overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End()) && other.Start.Before(w.End())
}

// ConflictsWithBuffer returns true if the windows overlap or the idle gap
// between them is shorter than the mandatory inter-booking buffer.
func (w TimeWindow) ConflictsWithBuffer(other TimeWindow, buffer time.Duration) bool {
	return w.Start.Before(other.End().Add(buffer)) && other.Start.Before(w.End().Add(buffer))
}

// Key returns the canonical form of the window used in reservation lock keys.
// Equal windows always produce equal keys.
func (w TimeWindow) Key() string {
	return fmt.Sprintf("%d-%d", w.Start.Unix(), w.DurationMinutes)
}

// String returns a human-readable representation for logs
func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s +%dm]", w.Start.Format(time.RFC3339), w.DurationMinutes)
}
