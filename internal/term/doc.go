// Package term is a minimal terminal editor for a session.Session.
//
// Keys typed one at a time are recorded as manual input. Text delivered
// between the start and end of a bracketed paste is recorded as pasted.
// With provenance display on, manual text is drawn green and pasted text red.
//
// Bindings: arrows/Home/End move, Backspace/Delete remove, Ctrl-Z undo,
// Ctrl-Y redo, Ctrl-S save, Ctrl-Q quit (twice with unsaved changes).
package term
