package session

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ghostkey/internal/document"
	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
	"github.com/dshills/ghostkey/internal/metadata"
)

// Session errors.
var (
	ErrOutOfRange      = errors.New("offset out of range")
	ErrNoPath          = errors.New("session has no file path")
	ErrUntrackedSource = errors.New("source is not tracked")
)

// Option configures a Session.
type Option func(*Session)

// WithStore sets the document store used by Open and Save.
func WithStore(st *document.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.store = st
		}
	}
}

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option {
	return func(s *Session) {
		s.historyLimit = n
	}
}

// WithLabels sets the sources assigned to the whole text after undo and redo.
// SourceUnknown leaves the restored text untracked.
func WithLabels(undo, redo provenance.Source) Option {
	return func(s *Session) {
		s.undoSource = undo
		s.redoSource = redo
	}
}

// WithBackupOnSave makes Save copy an existing file before overwriting it.
func WithBackupOnSave(enabled bool) Option {
	return func(s *Session) {
		s.backupOnSave = enabled
	}
}

// WithClock sets the time source for snapshots and new intervals.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// Session is one open document.
// All operations are thread-safe.
type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	path   string
	text   []rune
	cursor int
	dirty  bool

	tracker      *provenance.Tracker
	history      *History
	historyLimit int
	store        *document.Store

	undoSource   provenance.Source
	redoSource   provenance.Source
	backupOnSave bool

	now func() time.Time
	log *logging.Logger
}

// New creates an empty, unnamed session.
func New(opts ...Option) *Session {
	s := &Session{
		id:         uuid.New(),
		undoSource: provenance.SourceManual,
		redoSource: provenance.SourcePasted,
		now:        time.Now,
		log:        logging.NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.WithComponent("session").WithField("session", s.id.String()[:8])
	if s.store == nil {
		s.store = document.NewStore(document.WithLogger(s.log))
	}
	s.history = NewHistory(s.historyLimit)
	s.tracker = provenance.NewTracker(
		provenance.WithClock(s.now),
		provenance.WithLogger(s.log),
	)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Path returns the file the session is bound to, "" if none.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Text returns the current text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.text)
}

// Len returns the text length in runes.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.text)
}

// Dirty reports whether the text changed since the last Open or Save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Cursor returns the cursor offset in runes.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetCursor moves the cursor, clamped to the text.
func (s *Session) SetCursor(pos int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = clamp(pos, 0, len(s.text))
}

// MoveCursor moves the cursor by delta runes, clamped to the text.
func (s *Session) MoveCursor(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = clamp(s.cursor+delta, 0, len(s.text))
}

// Tracker returns the session's provenance tracker.
func (s *Session) Tracker() *provenance.Tracker {
	return s.tracker
}

// Provenance returns a copy of the current intervals.
func (s *Session) Provenance() provenance.Set {
	return s.tracker.Export()
}

// SourceAt returns the source of the rune at pos.
func (s *Session) SourceAt(pos int) provenance.Source {
	return s.tracker.SourceAt(pos)
}

// Stats summarizes the current provenance against the text length.
func (s *Session) Stats() metadata.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return metadata.ComputeStats(s.tracker.Export(), len(s.text))
}

// Type inserts text at the cursor as manually typed.
func (s *Session) Type(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(s.cursor, []rune(text), provenance.SourceManual)
}

// Paste inserts text at the cursor as pasted.
func (s *Session) Paste(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(s.cursor, []rune(text), provenance.SourcePasted)
}

// Insert inserts text at pos with the given source and leaves the cursor
// after it.
func (s *Session) Insert(pos int, text string, source provenance.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pos < 0 || pos > len(s.text) {
		return fmt.Errorf("insert at %d: %w", pos, ErrOutOfRange)
	}
	if !source.IsTracked() {
		return fmt.Errorf("insert %s: %w", source, ErrUntrackedSource)
	}
	s.insertLocked(pos, []rune(text), source)
	return nil
}

// Delete removes the runes in [start, end).
func (s *Session) Delete(start, end int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRange(start, end); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if start == end {
		return nil
	}
	s.pushLocked()
	s.deleteLocked(start, end)
	return nil
}

// Replace swaps [start, end) for text recorded with source.
func (s *Session) Replace(start, end int, text string, source provenance.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkRange(start, end); err != nil {
		return fmt.Errorf("replace: %w", err)
	}
	r := []rune(text)
	if len(r) > 0 && !source.IsTracked() {
		return fmt.Errorf("replace %s: %w", source, ErrUntrackedSource)
	}
	if start == end && len(r) == 0 {
		return nil
	}
	s.pushLocked()
	if start < end {
		s.deleteLocked(start, end)
	}
	if len(r) > 0 {
		s.spliceLocked(start, r, source)
	}
	return nil
}

// Backspace removes the rune before the cursor. It returns false at the
// start of the text.
func (s *Session) Backspace() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor == 0 {
		return false
	}
	s.pushLocked()
	s.deleteLocked(s.cursor-1, s.cursor)
	return true
}

// DeleteForward removes the rune under the cursor. It returns false at the
// end of the text.
func (s *Session) DeleteForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cursor >= len(s.text) {
		return false
	}
	s.pushLocked()
	s.deleteLocked(s.cursor, s.cursor+1)
	return true
}

// Undo restores the text before the last change. The tracker is reset to
// one span of the undo source.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.history.Undo(s.snapshotLocked())
	if err != nil {
		return err
	}
	s.restoreLocked(snap, s.undoSource)
	return nil
}

// Redo reapplies the last undone change. The tracker is reset to one span
// of the redo source.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.history.Redo(s.snapshotLocked())
	if err != nil {
		return err
	}
	s.restoreLocked(snap, s.redoSource)
	return nil
}

// CanUndo returns true if Undo would succeed.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo returns true if Redo would succeed.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// Load replaces the text and provenance without touching the file binding.
// Intervals are filtered the same way as on import.
func (s *Session) Load(text string, set provenance.Set) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked([]rune(text), set)
}

// Open binds the session to path and loads it. A missing file opens as an
// empty document. Missing or unreadable metadata leaves the text untracked.
func (s *Session) Open(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.store.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		s.log.Info("%s: new file", path)
		s.path = path
		s.resetLocked(nil, nil)
		return nil
	}

	meta := doc.Metadata
	if meta == nil && !s.store.IsEmbedded(path) {
		meta, err = s.store.ImportSidecar(path)
		if err != nil {
			s.log.Warn("%s: ignoring sidecar: %v", path, err)
		}
	}

	var set provenance.Set
	if meta != nil {
		set = meta.Ranges
	}
	s.path = path
	s.resetLocked([]rune(doc.Content), set)
	s.log.Debug("%s: opened %d runes, %d intervals", path, len(s.text), s.tracker.Len())
	return nil
}

// Save writes the session to path, or to the bound path when path is "".
// A successful save binds the session to path and clears the dirty flag.
func (s *Session) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if path == "" {
		path = s.path
	}
	if path == "" {
		return ErrNoPath
	}

	if s.backupOnSave {
		info, err := s.store.Info(path)
		if err != nil {
			return err
		}
		if info.Exists {
			name, err := s.store.Backup(path)
			if err != nil {
				return err
			}
			s.log.Debug("%s: backup written to %s", path, name)
		}
	}

	if err := s.store.Save(path, string(s.text), s.tracker.Export()); err != nil {
		return err
	}
	s.path = path
	s.dirty = false
	return nil
}

func (s *Session) checkRange(start, end int) error {
	if start < 0 || end < start || end > len(s.text) {
		return fmt.Errorf("[%d, %d) of %d: %w", start, end, len(s.text), ErrOutOfRange)
	}
	return nil
}

func (s *Session) insertLocked(pos int, r []rune, source provenance.Source) {
	if len(r) == 0 {
		return
	}
	s.pushLocked()
	s.spliceLocked(pos, r, source)
}

// spliceLocked inserts r at pos and reports it to the tracker.
func (s *Session) spliceLocked(pos int, r []rune, source provenance.Source) {
	s.text = slices.Insert(s.text, pos, r...)
	s.cursor = pos + len(r)
	s.dirty = true
	s.tracker.RecordInsertion(pos, len(r), source, len(s.text))
}

// deleteLocked removes [start, end) and lets the tracker reconcile.
func (s *Session) deleteLocked(start, end int) {
	s.text = slices.Delete(s.text, start, end)
	switch {
	case s.cursor >= end:
		s.cursor -= end - start
	case s.cursor > start:
		s.cursor = start
	}
	s.dirty = true
	s.tracker.ReconcileDeletions(len(s.text))
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Text:      slices.Clone(s.text),
		Cursor:    s.cursor,
		Timestamp: s.now(),
	}
}

func (s *Session) pushLocked() {
	s.history.Push(s.snapshotLocked())
}

func (s *Session) restoreLocked(snap Snapshot, source provenance.Source) {
	s.text = snap.Text
	s.cursor = clamp(snap.Cursor, 0, len(s.text))
	s.dirty = true
	s.tracker.ResetAsSingleSpan(source, len(s.text))
}

func (s *Session) resetLocked(text []rune, set provenance.Set) {
	s.text = text
	s.cursor = 0
	s.dirty = false
	s.history.Clear()
	s.tracker.Import(set)
	s.tracker.ReconcileDeletions(len(s.text))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
