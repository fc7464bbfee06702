package provenance

import (
	"sync"
	"time"

	"github.com/dshills/ghostkey/internal/logging"
)

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock sets the time source used to stamp new intervals.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the logger used for rejected requests and dropped imports.
func WithLogger(l *logging.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.log = l.WithComponent("provenance")
		}
	}
}

// Tracker owns the provenance Set of one open document.
// All operations are thread-safe.
type Tracker struct {
	mu        sync.Mutex
	intervals Set

	now func() time.Time
	log *logging.Logger
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		now: time.Now,
		log: logging.NullLogger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Clear discards every interval.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.intervals = nil
}

// RecordInsertion declares that length runes of source were inserted at
// position. The host buffer must already contain them: bufferLen is its length
// after the insertion.
//
// Coverage past bufferLen is trimmed first, then every interval at or after
// position moves right by length and an interval straddling position is split
// around the new text. Requests that cannot describe a non-empty span inside
// the buffer are ignored.
func (t *Tracker) RecordInsertion(position, length int, source Source, bufferLen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if position < 0 || length <= 0 || !source.IsTracked() || position+length > bufferLen {
		t.log.Debug("ignoring insertion pos=%d len=%d source=%s buffer=%d", position, length, source, bufferLen)
		return
	}

	t.reconcileLocked(bufferLen)

	end := position + length
	next := make(Set, 0, len(t.intervals)+2)
	for _, iv := range t.intervals {
		switch {
		case iv.End <= position:
			next = append(next, iv)
		case iv.Start >= position:
			next = append(next, iv.Shift(length))
		default:
			left, right := iv, iv
			left.End = position
			right.Start = end
			right.End = iv.End + length
			next = append(next, left, right)
		}
	}

	next = append(next, Interval{
		Start:     position,
		End:       end,
		Source:    source,
		Timestamp: t.now(),
	})
	next.SortByStart()
	t.intervals = coalesceTouching(next)
}

// ReconcileDeletions trims coverage to a buffer that is now bufferLen runes
// long. Intervals starting at or past the end are dropped, intervals crossing
// it are cut, and any interval left empty is dropped.
func (t *Tracker) ReconcileDeletions(bufferLen int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reconcileLocked(bufferLen)
}

// reconcileLocked implements ReconcileDeletions (must hold lock).
func (t *Tracker) reconcileLocked(bufferLen int) {
	if bufferLen < 0 {
		bufferLen = 0
	}
	kept := t.intervals[:0]
	for _, iv := range t.intervals {
		if iv.Start >= bufferLen {
			continue
		}
		if iv.End > bufferLen {
			iv.End = bufferLen
		}
		if iv.End > iv.Start {
			kept = append(kept, iv)
		}
	}
	t.intervals = kept
}

// SourceAt returns the source covering position, or SourceUnknown.
func (t *Tracker) SourceAt(position int) Source {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, iv := range t.intervals {
		if iv.Contains(position) {
			return iv.Source
		}
		if iv.Start > position {
			break
		}
	}
	return SourceUnknown
}

// RangesIn returns copies of the intervals overlapping [start, end).
func (t *Tracker) RangesIn(start, end int) Set {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out Set
	for _, iv := range t.intervals {
		if iv.Overlaps(start, end) {
			out = append(out, iv)
		}
	}
	return out
}

// ResetAsSingleSpan replaces the set with one interval covering the whole
// buffer. It is meant for operations such as undo and redo that swap the
// buffer wholesale. SourceUnknown, or an empty buffer, leaves the set empty.
func (t *Tracker) ResetAsSingleSpan(source Source, bufferLen int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.intervals = nil
	if bufferLen <= 0 || !source.IsTracked() {
		return
	}
	t.intervals = Set{{
		Start:     0,
		End:       bufferLen,
		Source:    source,
		Timestamp: t.now(),
	}}
}

// Export returns a copy of the current set.
func (t *Tracker) Export() Set {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(Set, len(t.intervals))
	copy(out, t.intervals)
	return out
}

// Import replaces the current set with a copy of s. Intervals with negative
// offsets, no length or no tracked source are dropped; the rest are sorted by
// start. Overlaps in s are kept as given.
func (t *Tracker) Import(s Set) {
	next := make(Set, 0, len(s))
	for _, iv := range s {
		if !iv.IsValid() {
			t.log.Warn("dropping invalid interval on import: %s", iv)
			continue
		}
		next = append(next, iv)
	}
	next.SortByStart()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.intervals = next
}

// Len returns the number of intervals.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.intervals)
}

// TrackedLength returns the number of runes with a recorded source.
func (t *Tracker) TrackedLength() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.intervals.TrackedLength()
}
