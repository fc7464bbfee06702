package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ghostkey/internal/app"
)

// errUsage reports bad command arguments; the message is already printed.
var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app.App, args []string, stderr io.Writer) error
}

var commandOrder = []string{
	"edit", "stats", "inspect", "validate", "merge",
	"export-meta", "import-meta", "watch", "version",
}

var commands = map[string]command{
	"edit":        {"Open a file in the terminal editor", runEdit},
	"stats":       {"Print provenance statistics", runStats},
	"inspect":     {"Print stored metadata", runInspect},
	"validate":    {"Check stored metadata", runValidate},
	"merge":       {"Merge the metadata of two files", runMerge},
	"export-meta": {"Write embedded metadata to a sidecar file", runExportMeta},
	"import-meta": {"Embed sidecar metadata into a document", runImportMeta},
	"watch":       {"Report statistics whenever files change", runWatch},
	"version":     {"Show version information", nil},
}

// parse parses command flags and checks the positional argument count.
// maxArgs < 0 means unbounded.
func parse(fs *flag.FlagSet, args []string, stderr io.Writer, minArgs, maxArgs int, positional string) ([]string, error) {
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: ghostkey %s [options] %s\n", fs.Name(), positional)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}
	rest := fs.Args()
	if len(rest) < minArgs || (maxArgs >= 0 && len(rest) > maxArgs) {
		fs.Usage()
		return nil, errUsage
	}
	return rest, nil
}

func runEdit(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	rest, err := parse(flag.NewFlagSet("edit", flag.ContinueOnError), args, stderr, 0, 1, "[file]")
	if err != nil {
		return err
	}
	path := ""
	if len(rest) == 1 {
		path = rest[0]
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	defer screen.Fini()

	return a.Edit(path, screen)
}

func runStats(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	rest, err := parse(flag.NewFlagSet("stats", flag.ContinueOnError), args, stderr, 1, -1, "<file>...")
	if err != nil {
		return err
	}
	var errs []error
	for i, path := range rest {
		if i > 0 {
			fmt.Fprintln(a.Stdout())
		}
		errs = append(errs, a.Stats(path))
	}
	return errors.Join(errs...)
}

func runInspect(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	colorMode := fs.String("color", "auto", "Colour output: auto, always, never")
	rest, err := parse(fs, args, stderr, 1, 1, "<file>")
	if err != nil {
		return err
	}

	var color bool
	switch *colorMode {
	case "always":
		color = true
	case "never":
	case "auto":
		color = app.ColorEnabled(os.Stdout)
	default:
		fmt.Fprintf(stderr, "invalid -color %q\n", *colorMode)
		return errUsage
	}
	return a.Inspect(rest[0], color)
}

func runValidate(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	rest, err := parse(flag.NewFlagSet("validate", flag.ContinueOnError), args, stderr, 1, -1, "<file>...")
	if err != nil {
		return err
	}
	var errs []error
	for _, path := range rest {
		errs = append(errs, a.Validate(path))
	}
	return errors.Join(errs...)
}

func runMerge(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("merge", flag.ContinueOnError)
	out := fs.String("o", "", "Output file (default stdout)")
	rest, err := parse(fs, args, stderr, 2, 2, "<file-a> <file-b>")
	if err != nil {
		return err
	}
	return a.Merge(rest[0], rest[1], *out)
}

func runExportMeta(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	rest, err := parse(flag.NewFlagSet("export-meta", flag.ContinueOnError), args, stderr, 1, -1, "<file>...")
	if err != nil {
		return err
	}
	var errs []error
	for _, path := range rest {
		errs = append(errs, a.ExportMeta(path))
	}
	return errors.Join(errs...)
}

func runImportMeta(_ context.Context, a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("import-meta", flag.ContinueOnError)
	out := fs.String("o", "", "Output document (default <file>.lakra)")
	rest, err := parse(fs, args, stderr, 1, 1, "<file>")
	if err != nil {
		return err
	}
	return a.ImportMeta(rest[0], *out)
}

func runWatch(ctx context.Context, a *app.App, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	delay := fs.Duration("delay", 200*time.Millisecond, "Debounce delay")
	rest, err := parse(fs, args, stderr, 1, -1, "<file>...")
	if err != nil {
		return err
	}
	return a.Watch(ctx, rest, *delay)
}
