package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Labels accepted for undo/redo restoration.
const (
	LabelManual  = "manual"
	LabelPasted  = "pasted"
	LabelUnknown = "unknown"
)

// Config holds every GhostKey setting.
type Config struct {
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Document DocumentConfig `toml:"document" yaml:"document"`
	History  HistoryConfig  `toml:"history" yaml:"history"`
	Editor   EditorConfig   `toml:"editor" yaml:"editor"`
}

// LoggingConfig configures diagnostics.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" yaml:"level"`

	// File receives log output instead of stderr when set.
	File string `toml:"file" yaml:"file"`
}

// DocumentConfig configures the document store.
type DocumentConfig struct {
	Suffix        string `toml:"suffix" yaml:"suffix"`
	SidecarSuffix string `toml:"sidecar_suffix" yaml:"sidecar_suffix"`
	BackupOnSave  bool   `toml:"backup_on_save" yaml:"backup_on_save"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	MaxEntries int `toml:"max_entries" yaml:"max_entries"`

	// UndoLabel and RedoLabel name the source assigned to the whole buffer
	// after an undo or redo: manual, pasted or unknown.
	UndoLabel string `toml:"undo_label" yaml:"undo_label"`
	RedoLabel string `toml:"redo_label" yaml:"redo_label"`
}

// EditorConfig configures the terminal editor.
type EditorConfig struct {
	TabWidth       int  `toml:"tab_width" yaml:"tab_width"`
	ShowProvenance bool `toml:"show_provenance" yaml:"show_provenance"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Document: DocumentConfig{
			Suffix:        ".lakra",
			SidecarSuffix: ".meta",
		},
		History: HistoryConfig{
			MaxEntries: 1000,
			UndoLabel:  LabelManual,
			RedoLabel:  LabelPasted,
		},
		Editor: EditorConfig{
			TabWidth:       4,
			ShowProvenance: true,
		},
	}
}

// Validate checks settings that would otherwise fail later.
func (c Config) Validate() error {
	var problems []string

	if !logging.ValidLevel(c.Logging.Level) {
		problems = append(problems, fmt.Sprintf("logging.level %q", c.Logging.Level))
	}
	if !validSuffix(c.Document.Suffix) {
		problems = append(problems, fmt.Sprintf("document.suffix %q", c.Document.Suffix))
	}
	if !validSuffix(c.Document.SidecarSuffix) {
		problems = append(problems, fmt.Sprintf("document.sidecar_suffix %q", c.Document.SidecarSuffix))
	}
	if c.Document.Suffix == c.Document.SidecarSuffix {
		problems = append(problems, "document.suffix and document.sidecar_suffix must differ")
	}
	if c.History.MaxEntries <= 0 {
		problems = append(problems, fmt.Sprintf("history.max_entries %d", c.History.MaxEntries))
	}
	if _, err := ParseLabel(c.History.UndoLabel); err != nil {
		problems = append(problems, "history.undo_label: "+err.Error())
	}
	if _, err := ParseLabel(c.History.RedoLabel); err != nil {
		problems = append(problems, "history.redo_label: "+err.Error())
	}
	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		problems = append(problems, fmt.Sprintf("editor.tab_width %d", c.Editor.TabWidth))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func validSuffix(s string) bool {
	return len(s) > 1 && strings.HasPrefix(s, ".") && !strings.ContainsAny(s, `/\`)
}

// ParseLabel converts an undo/redo label to a source. "unknown" maps to
// provenance.SourceUnknown, which leaves the restored buffer untracked.
func ParseLabel(label string) (provenance.Source, error) {
	switch strings.ToLower(label) {
	case LabelManual:
		return provenance.SourceManual, nil
	case LabelPasted:
		return provenance.SourcePasted, nil
	case LabelUnknown:
		return provenance.SourceUnknown, nil
	default:
		return provenance.SourceUnknown, fmt.Errorf("unknown label %q", label)
	}
}

// UndoSource returns the parsed undo label, SourceManual if it is invalid.
func (c Config) UndoSource() provenance.Source {
	if s, err := ParseLabel(c.History.UndoLabel); err == nil {
		return s
	}
	return provenance.SourceManual
}

// RedoSource returns the parsed redo label, SourcePasted if it is invalid.
func (c Config) RedoSource() provenance.Source {
	if s, err := ParseLabel(c.History.RedoLabel); err == nil {
		return s
	}
	return provenance.SourcePasted
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "ghostkey", "config.toml")
}
