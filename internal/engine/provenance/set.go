package provenance

import (
	"errors"
	"fmt"
	"sort"
)

// Invariant violations reported by Set.CheckInvariants.
var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrUnsorted        = errors.New("intervals not sorted by start")
	ErrOverlap         = errors.New("intervals overlap")
	ErrNotCoalesced    = errors.New("touching intervals share a source")
)

// Set is an ordered collection of Intervals.
type Set []Interval

// Clone returns an independent copy of the set.
// A nil set stays nil.
func (s Set) Clone() Set {
	if s == nil {
		return nil
	}
	out := make(Set, len(s))
	copy(out, s)
	return out
}

// TrackedLength returns the sum of the interval lengths.
func (s Set) TrackedLength() int {
	n := 0
	for _, iv := range s {
		n += iv.Len()
	}
	return n
}

// SortByStart orders the set by Start in place, keeping the relative order of
// intervals that share a start.
func (s Set) SortByStart() {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Start < s[j].Start
	})
}

// coalesceTouching merges neighbours that share a source and meet exactly at a
// boundary. The set must already be sorted.
func coalesceTouching(s Set) Set {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, iv := range s[1:] {
		last := &out[len(out)-1]
		if last.Source == iv.Source && last.End == iv.Start {
			last.Start = min(last.Start, iv.Start)
			last.End = max(last.End, iv.End)
			last.Timestamp = earlier(last.Timestamp, iv.Timestamp)
			continue
		}
		out = append(out, iv)
	}
	return out
}

// CheckInvariants verifies every structural and ordering rule of a tracked set:
// valid intervals, ascending starts, no overlap, no touching same-source pair.
// Loading code does not call it, since older documents may predate these rules.
func (s Set) CheckInvariants() error {
	for i, iv := range s {
		if !iv.IsValid() {
			return fmt.Errorf("%w at %d: %s", ErrInvalidInterval, i, iv)
		}
		if i == 0 {
			continue
		}
		prev := s[i-1]
		switch {
		case prev.Start > iv.Start:
			return fmt.Errorf("%w at %d: %s after %s", ErrUnsorted, i, iv, prev)
		case prev.End > iv.Start:
			return fmt.Errorf("%w at %d: %s and %s", ErrOverlap, i, prev, iv)
		case prev.End == iv.Start && prev.Source == iv.Source:
			return fmt.Errorf("%w at %d: %s and %s", ErrNotCoalesced, i, prev, iv)
		}
	}
	return nil
}
