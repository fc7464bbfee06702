package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/ghostkey/internal/config"
	"github.com/dshills/ghostkey/internal/document"
	"github.com/dshills/ghostkey/internal/logging"
	"github.com/dshills/ghostkey/internal/metadata"
	"github.com/dshills/ghostkey/internal/session"
)

// Options configures an App.
type Options struct {
	// ConfigPath is the configuration file. Empty means config.DefaultPath.
	ConfigPath string

	// LogLevel overrides the configured level when set.
	LogLevel string

	// Debug forces the debug level.
	Debug bool

	// Interactive discards log output unless a log file is configured, so
	// that it does not draw over the terminal editor.
	Interactive bool

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// App holds the shared components of one ghostkey invocation.
type App struct {
	cfg    config.Config
	log    *logging.Logger
	codec  *metadata.Codec
	store  *document.Store
	stdout io.Writer
	stderr io.Writer

	logFile *os.File
}

// New loads configuration and builds the logger and store.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
	}
	if a.stdout == nil {
		a.stdout = os.Stdout
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}

	if err := a.initLogger(opts); err != nil {
		return nil, err
	}

	a.codec = metadata.NewCodec(metadata.WithCodecLogger(a.log))
	a.store = document.NewStore(
		document.WithSuffix(cfg.Document.Suffix),
		document.WithSidecarSuffix(cfg.Document.SidecarSuffix),
		document.WithCodec(a.codec),
		document.WithLogger(a.log),
	)
	a.log.Debug("configuration loaded (suffix=%s history=%d)", cfg.Document.Suffix, cfg.History.MaxEntries)
	return a, nil
}

func (a *App) initLogger(opts Options) error {
	levelName := a.cfg.Logging.Level
	if opts.LogLevel != "" {
		if !logging.ValidLevel(opts.LogLevel) {
			return fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", opts.LogLevel)
		}
		levelName = opts.LogLevel
	}
	level := logging.ParseLogLevel(levelName)
	if opts.Debug {
		level = logging.LogLevelDebug
	}

	out := a.stderr
	switch {
	case a.cfg.Logging.File != "":
		f, err := os.OpenFile(a.cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.logFile = f
		out = f
	case opts.Interactive:
		out = io.Discard
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Output = out
	a.log = logging.New(cfg)
	return nil
}

// Close releases the log file, if any.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	err := a.logFile.Close()
	a.logFile = nil
	return err
}

// Config returns the effective configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the application logger.
func (a *App) Logger() *logging.Logger {
	return a.log
}

// Stdout returns the writer commands print to.
func (a *App) Stdout() io.Writer {
	return a.stdout
}

// Store returns the document store.
func (a *App) Store() *document.Store {
	return a.store
}

// NewSession creates a session configured from the application settings.
func (a *App) NewSession() *session.Session {
	return session.New(
		session.WithStore(a.store),
		session.WithHistoryLimit(a.cfg.History.MaxEntries),
		session.WithLabels(a.cfg.UndoSource(), a.cfg.RedoSource()),
		session.WithBackupOnSave(a.cfg.Document.BackupOnSave),
		session.WithLogger(a.log),
	)
}

// isSidecar reports whether path names a sidecar file itself.
func (a *App) isSidecar(path string) bool {
	return strings.HasSuffix(path, a.cfg.Document.SidecarSuffix)
}

// loadMetadata returns the provenance of path. path may be an embedded
// document, a plain file with a sidecar, or a sidecar file. A nil result
// with no error means the file has no usable metadata.
func (a *App) loadMetadata(path string) (*metadata.Metadata, error) {
	if a.isSidecar(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return a.codec.Decode(string(data)), nil
	}

	doc, err := a.store.Load(path)
	if err != nil {
		return nil, err
	}
	if doc.Metadata != nil || a.store.IsEmbedded(path) {
		return doc.Metadata, nil
	}
	return a.store.ImportSidecar(path)
}

// rawMetadata returns the envelope text stored for path without decoding it.
func (a *App) rawMetadata(path string) (string, error) {
	if a.isSidecar(path) {
		data, err := os.ReadFile(path)
		return string(data), err
	}
	if !a.store.IsEmbedded(path) {
		data, err := os.ReadFile(a.store.SidecarPath(path))
		if err != nil {
			if os.IsNotExist(err) {
				return "", ErrNoMetadata
			}
			return "", err
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	_, encoded, ok := document.Extract(strings.TrimPrefix(string(data), "\uFEFF"))
	if !ok {
		return "", ErrNoMetadata
	}
	return encoded, nil
}
