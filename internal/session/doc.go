// Package session is the host side of provenance tracking: one open
// document with its text, cursor, undo history and Tracker.
//
// Every edit captures the offset, mutates the text and reports the change to
// the tracker while holding the session lock, so the tracker never sees a
// position computed against a stale buffer.
//
// Undo and redo restore whole-text snapshots. The restored text cannot be
// attributed rune by rune, so the tracker is reset to a single span labelled
// with the configured undo or redo source.
package session
