package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/ghostkey/internal/watch"
)

// Watch prints a stats line for each path whenever it changes, until ctx is
// done.
func (a *App) Watch(ctx context.Context, paths []string, delay time.Duration) error {
	w, err := watch.New(watch.WithDelay(delay), watch.WithLogger(a.log))
	if err != nil {
		return opError("watch", "", err)
	}
	defer w.Close()

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			return opError("watch", p, err)
		}
		a.report(p)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			a.log.Debug("%s: %s", ev.Path, ev.Op)
			a.report(ev.Path)

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			a.log.Warn("watch: %v", err)
		}
	}
}

// report prints one stats line for path.
func (a *App) report(path string) {
	if err := a.requireFile(path); err != nil {
		if isNotExist(err) {
			fmt.Fprintf(a.stdout, "%s  %s: missing\n", time.Now().Format(time.TimeOnly), path)
			return
		}
		a.log.Warn("%s: %v", path, err)
		return
	}

	sess := a.NewSession()
	if err := sess.Open(path); err != nil {
		a.log.Warn("%s: %v", path, err)
		return
	}
	st := sess.Stats()
	fmt.Fprintf(a.stdout, "%s  %s: %d chars, typed %.1f%%, pasted %.1f%%, unknown %.1f%% (%s)\n",
		time.Now().Format(time.TimeOnly), path, st.TotalChars,
		st.TypedPercentage, st.PastedPercentage, st.UnknownPercentage, st.Assessment())
}
