// Package config loads GhostKey settings.
//
// Settings come from three layers, later ones winning:
//
//  1. Built-in defaults (Default).
//  2. A TOML or YAML file, chosen by extension. A missing file is not an error.
//  3. GHOSTKEY_* environment variables.
//
// Example config.toml:
//
//	[logging]
//	level = "debug"
//
//	[document]
//	suffix = ".lakra"
//	sidecar_suffix = ".meta"
//	backup_on_save = true
//
//	[history]
//	max_entries = 500
//	undo_label = "manual"
//	redo_label = "pasted"
package config
