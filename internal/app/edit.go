package app

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ghostkey/internal/term"
)

// Edit opens path in the terminal editor on screen. The screen must be
// initialized; Edit does not finalize it.
func (a *App) Edit(path string, screen tcell.Screen) error {
	sess := a.NewSession()
	if path != "" {
		if err := sess.Open(path); err != nil {
			return opError("edit", path, err)
		}
	}

	ed := term.New(screen, sess,
		term.WithTabWidth(a.cfg.Editor.TabWidth),
		term.WithProvenance(a.cfg.Editor.ShowProvenance),
		term.WithLogger(a.log),
	)
	a.log.Info("editing %s (session %s)", path, sess.ID())
	if err := ed.Run(); err != nil {
		return opError("edit", path, err)
	}
	return nil
}
