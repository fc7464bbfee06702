package term

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
	"github.com/dshills/ghostkey/internal/session"
)

// Styles for provenance display.
var (
	StyleManual  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	StylePasted  = tcell.StyleDefault.Foreground(tcell.ColorRed)
	StyleUnknown = tcell.StyleDefault
	StyleStatus  = tcell.StyleDefault.Reverse(true)
)

// Option configures an Editor.
type Option func(*Editor)

// WithTabWidth sets the tab stop width.
func WithTabWidth(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.tabWidth = n
		}
	}
}

// WithProvenance turns provenance colouring on or off.
func WithProvenance(show bool) Option {
	return func(e *Editor) {
		e.showProvenance = show
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l.WithComponent("term")
		}
	}
}

// Editor draws a session on a tcell screen and applies key events to it.
// It is driven from one goroutine.
type Editor struct {
	screen tcell.Screen
	sess   *session.Session
	log    *logging.Logger

	tabWidth       int
	showProvenance bool

	pasting  bool
	pasteBuf strings.Builder

	topLine   int
	goalCol   int
	status    string
	quitArmed bool
	quit      bool
}

// New creates an editor. The screen must already be initialized.
func New(screen tcell.Screen, sess *session.Session, opts ...Option) *Editor {
	e := &Editor{
		screen:         screen,
		sess:           sess,
		log:            logging.NullLogger,
		tabWidth:       4,
		showProvenance: true,
		goalCol:        -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes events until the user quits.
func (e *Editor) Run() error {
	e.screen.EnablePaste()
	defer e.screen.DisablePaste()

	e.Draw()
	for !e.quit {
		ev := e.screen.PollEvent()
		if ev == nil {
			return errors.New("screen closed")
		}
		e.HandleEvent(ev)
		e.Draw()
	}
	return nil
}

// Quit reports whether the user asked to leave.
func (e *Editor) Quit() bool {
	return e.quit
}

// Status returns the current status message.
func (e *Editor) Status() string {
	return e.status
}

// HandleEvent applies one event.
func (e *Editor) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventPaste:
		if ev.Start() {
			e.pasting = true
			e.pasteBuf.Reset()
			return
		}
		e.pasting = false
		if e.pasteBuf.Len() > 0 {
			e.sess.Paste(e.pasteBuf.String())
			e.log.Debug("pasted %d bytes", e.pasteBuf.Len())
			e.pasteBuf.Reset()
		}
		e.goalCol = -1

	case *tcell.EventKey:
		if e.pasting {
			e.bufferPaste(ev)
			return
		}
		e.handleKey(ev)

	case *tcell.EventResize:
		e.screen.Sync()
	}
}

func (e *Editor) bufferPaste(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyRune:
		e.pasteBuf.WriteRune(ev.Rune())
	case tcell.KeyEnter, tcell.KeyLF:
		e.pasteBuf.WriteByte('\n')
	case tcell.KeyTab:
		e.pasteBuf.WriteByte('\t')
	}
}

func (e *Editor) handleKey(ev *tcell.EventKey) {
	if ev.Key() != tcell.KeyCtrlQ {
		e.quitArmed = false
	}
	if ev.Key() != tcell.KeyUp && ev.Key() != tcell.KeyDown {
		e.goalCol = -1
	}

	switch ev.Key() {
	case tcell.KeyRune:
		if ev.Modifiers()&(tcell.ModAlt|tcell.ModCtrl) != 0 {
			return
		}
		e.sess.Type(string(ev.Rune()))
		e.status = ""
	case tcell.KeyEnter, tcell.KeyLF:
		e.sess.Type("\n")
	case tcell.KeyTab:
		e.sess.Type("\t")
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		e.sess.Backspace()
	case tcell.KeyDelete:
		e.sess.DeleteForward()
	case tcell.KeyLeft:
		e.sess.MoveCursor(-1)
	case tcell.KeyRight:
		e.sess.MoveCursor(1)
	case tcell.KeyUp:
		e.moveLine(-1)
	case tcell.KeyDown:
		e.moveLine(1)
	case tcell.KeyHome:
		e.moveHome()
	case tcell.KeyEnd:
		e.moveEnd()
	case tcell.KeyCtrlZ:
		e.report(e.sess.Undo(), "undo")
	case tcell.KeyCtrlY:
		e.report(e.sess.Redo(), "redo")
	case tcell.KeyCtrlS:
		e.save()
	case tcell.KeyCtrlQ:
		if e.sess.Dirty() && !e.quitArmed {
			e.quitArmed = true
			e.status = "unsaved changes, Ctrl-Q again to quit"
			return
		}
		e.quit = true
	}
}

func (e *Editor) report(err error, what string) {
	if err != nil {
		e.status = err.Error()
		return
	}
	e.status = what
}

func (e *Editor) save() {
	if err := e.sess.Save(""); err != nil {
		e.log.Error("save failed: %v", err)
		e.status = "save failed: " + err.Error()
		return
	}
	e.status = "saved " + e.sess.Path()
}

func (e *Editor) moveLine(delta int) {
	text := []rune(e.sess.Text())
	starts := lineStarts(text)
	line, col := locate(starts, e.sess.Cursor())
	if e.goalCol < 0 {
		e.goalCol = col
	}

	target := line + delta
	if target < 0 || target >= len(starts) {
		return
	}
	end := lineEnd(starts, target, len(text))
	e.sess.SetCursor(min(starts[target]+e.goalCol, end))
}

func (e *Editor) moveHome() {
	starts := lineStarts([]rune(e.sess.Text()))
	line, _ := locate(starts, e.sess.Cursor())
	e.sess.SetCursor(starts[line])
}

func (e *Editor) moveEnd() {
	text := []rune(e.sess.Text())
	starts := lineStarts(text)
	line, _ := locate(starts, e.sess.Cursor())
	e.sess.SetCursor(lineEnd(starts, line, len(text)))
}

// Draw renders the text and status line.
func (e *Editor) Draw() {
	e.screen.Clear()
	width, height := e.screen.Size()
	if width <= 0 || height <= 0 {
		return
	}
	rows := height - 1

	text := []rune(e.sess.Text())
	starts := lineStarts(text)
	cursor := e.sess.Cursor()
	curLine, _ := locate(starts, cursor)
	e.scrollTo(curLine, rows)

	set := e.sess.Provenance()
	next := 0
	cursorX, cursorY := -1, -1

	for row := 0; row < rows && e.topLine+row < len(starts); row++ {
		line := e.topLine + row
		start := starts[line]
		end := lineEnd(starts, line, len(text))

		x := 0
		lastX := -1
		for off := start; off <= end; off++ {
			if off == cursor {
				cursorX, cursorY = x, row
			}
			if off == end {
				break
			}

			r := text[off]
			w := runeWidth(r, x, e.tabWidth)
			style := e.styleAt(set, &next, off)

			switch {
			case w == 0 && lastX >= 0:
				mainc, combc, st, _ := e.screen.GetContent(lastX, row)
				e.screen.SetContent(lastX, row, mainc, append(combc, r), st)
			case r == '\t':
				for i := 0; i < w && x+i < width; i++ {
					e.screen.SetContent(x+i, row, ' ', nil, style)
				}
			case x+w <= width:
				e.screen.SetContent(x, row, r, nil, style)
			}
			if w > 0 {
				lastX = x
			}
			x += w
		}
	}

	e.drawStatus(width, height-1)
	if cursorX >= 0 && cursorX < width {
		e.screen.ShowCursor(cursorX, cursorY)
	} else {
		e.screen.HideCursor()
	}
	e.screen.Show()
}

func (e *Editor) scrollTo(line, rows int) {
	if rows <= 0 {
		return
	}
	if line < e.topLine {
		e.topLine = line
	}
	if line >= e.topLine+rows {
		e.topLine = line - rows + 1
	}
}

// styleAt returns the style for offset. Offsets must be visited in
// increasing order; next is the index of the first interval that may cover
// offset.
func (e *Editor) styleAt(set provenance.Set, next *int, offset int) tcell.Style {
	if !e.showProvenance {
		return StyleUnknown
	}
	for *next < len(set) && set[*next].End <= offset {
		*next++
	}
	if *next < len(set) && set[*next].Contains(offset) {
		switch set[*next].Source {
		case provenance.SourceManual:
			return StyleManual
		case provenance.SourcePasted:
			return StylePasted
		}
	}
	return StyleUnknown
}

func (e *Editor) drawStatus(width, row int) {
	name := e.sess.Path()
	if name == "" {
		name = "[no name]"
	}
	if e.sess.Dirty() {
		name += " [+]"
	}
	st := e.sess.Stats()
	line := fmt.Sprintf(" %s | typed %.1f%% pasted %.1f%% | %s", name, st.TypedPercentage, st.PastedPercentage, e.status)

	x := 0
	for _, r := range line {
		if x >= width {
			break
		}
		e.screen.SetContent(x, row, r, nil, StyleStatus)
		x += max(runeWidth(r, x, e.tabWidth), 1)
	}
	for ; x < width; x++ {
		e.screen.SetContent(x, row, ' ', nil, StyleStatus)
	}
}
