package provenance

import (
	"fmt"
	"time"
)

// Interval is a half-open span [Start, End) of rune offsets with one source.
type Interval struct {
	Start     int
	End       int
	Source    Source
	Timestamp time.Time
}

// String returns a human-readable representation of the interval.
func (iv Interval) String() string {
	return fmt.Sprintf("[%d:%d) %s", iv.Start, iv.End, iv.Source)
}

// Len returns the number of runes covered.
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// IsValid reports whether the interval satisfies 0 <= Start < End and carries
// a tracked source.
func (iv Interval) IsValid() bool {
	return iv.Start >= 0 && iv.Start < iv.End && iv.Source.IsTracked()
}

// Contains reports whether offset falls inside the interval.
func (iv Interval) Contains(offset int) bool {
	return offset >= iv.Start && offset < iv.End
}

// Overlaps reports whether the interval intersects [start, end).
func (iv Interval) Overlaps(start, end int) bool {
	return iv.Start < end && iv.End > start
}

// Shift returns the interval moved by delta runes.
func (iv Interval) Shift(delta int) Interval {
	iv.Start += delta
	iv.End += delta
	return iv
}

// earlier returns the older of two timestamps.
func earlier(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
