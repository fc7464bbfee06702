// Package provenance tracks where each character of a text buffer came from.
//
// Every character is either typed (SourceManual), pasted (SourcePasted) or
// untracked. Typed and pasted spans are kept as a Set of half-open Intervals
// over rune offsets, sorted by start, pairwise disjoint, with touching
// same-source neighbours coalesced.
//
// # Tracker
//
// A Tracker owns the Set of one open document. The host editor applies an edit
// to its own buffer first and then reports it:
//
//	tracker := provenance.NewTracker()
//
//	// "hello" was typed at offset 0; the buffer is now 5 runes long.
//	tracker.RecordInsertion(0, 5, provenance.SourceManual, 5)
//
//	// "!" was pasted at offset 5.
//	tracker.RecordInsertion(5, 1, provenance.SourcePasted, 6)
//
// The tracker never sees the buffer itself. Deletions are inferred from the
// buffer length passed to RecordInsertion or ReconcileDeletions: coverage past
// the new end is trimmed. This cannot tell a deletion in the middle of tracked
// text from one at the end, so callers that delete from the middle see trailing
// coverage shrink instead.
//
// # Thread Safety
//
// All Tracker operations take a single mutex, including the reconciliation step
// that precedes every insertion. Exported Sets are copies.
package provenance
