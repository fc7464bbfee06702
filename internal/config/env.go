package config

import (
	"fmt"
	"strconv"
)

// EnvPrefix starts every environment variable read by ApplyEnv.
const EnvPrefix = "GHOSTKEY_"

// envSetter applies one variable to a Config.
type envSetter func(c *Config, value string) error

// envMapping maps variable names (without prefix) to setters.
var envMapping = map[string]envSetter{
	"LOG_LEVEL":       setString(func(c *Config) *string { return &c.Logging.Level }),
	"LOG_FILE":        setString(func(c *Config) *string { return &c.Logging.File }),
	"DOCUMENT_SUFFIX": setString(func(c *Config) *string { return &c.Document.Suffix }),
	"SIDECAR_SUFFIX":  setString(func(c *Config) *string { return &c.Document.SidecarSuffix }),
	"BACKUP_ON_SAVE":  setBool(func(c *Config) *bool { return &c.Document.BackupOnSave }),
	"HISTORY_MAX":     setInt(func(c *Config) *int { return &c.History.MaxEntries }),
	"UNDO_LABEL":      setString(func(c *Config) *string { return &c.History.UndoLabel }),
	"REDO_LABEL":      setString(func(c *Config) *string { return &c.History.RedoLabel }),
	"TAB_WIDTH":       setInt(func(c *Config) *int { return &c.Editor.TabWidth }),
	"SHOW_PROVENANCE": setBool(func(c *Config) *bool { return &c.Editor.ShowProvenance }),
}

// ApplyEnv overlays GHOSTKEY_* variables found through lookup. Empty values
// count as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envMapping {
		value, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, value); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
	}
	return nil
}

func setString(field func(*Config) *string) envSetter {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func setInt(field func(*Config) *int) envSetter {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func setBool(field func(*Config) *bool) envSetter {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
