package app

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/dshills/ghostkey/internal/metadata"
)

// Stats prints the provenance summary and assessment of path.
func (a *App) Stats(path string) error {
	if err := a.requireFile(path); err != nil {
		return opError("stats", path, err)
	}

	sess := a.NewSession()
	if err := sess.Open(path); err != nil {
		return opError("stats", path, err)
	}
	writeStats(a.stdout, path, sess.Stats())
	return nil
}

// Inspect prints the stored envelope of path, pretty-printed and optionally
// coloured, followed by one line per range.
func (a *App) Inspect(path string, color bool) error {
	raw, err := a.rawMetadata(path)
	if err != nil {
		return opError("inspect", path, err)
	}

	out := pretty.Pretty([]byte(strings.TrimSpace(raw)))
	if color {
		out = pretty.Color(out, nil)
	}
	if _, err := a.stdout.Write(out); err != nil {
		return err
	}

	meta := a.codec.Decode(raw)
	if meta == nil {
		return opError("inspect", path, ErrInvalidMetadata)
	}
	fmt.Fprintf(a.stdout, "\nversion %s, created %s, %d ranges\n", meta.Version, formatTime(meta.Created), len(meta.Ranges))
	for _, iv := range meta.Ranges {
		fmt.Fprintf(a.stdout, "  %-16s %6d runes  %s\n", iv.String(), iv.Len(), formatTime(iv.Timestamp))
	}
	return nil
}

// Validate checks the metadata of path. Problems are listed on stdout and
// reported as ErrInvalidMetadata.
func (a *App) Validate(path string) error {
	if err := a.requireFile(path); err != nil {
		return opError("validate", path, err)
	}

	meta, err := a.loadMetadata(path)
	if err != nil {
		return opError("validate", path, err)
	}
	if meta == nil {
		return opError("validate", path, ErrNoMetadata)
	}

	var problems []string
	for _, iv := range meta.Ranges {
		if !iv.IsValid() {
			problems = append(problems, "invalid range "+iv.String())
		}
	}
	if !a.codec.Validate(meta.Ranges) && len(problems) == 0 {
		problems = append(problems, "ranges rejected by codec")
	}
	if err := meta.Ranges.CheckInvariants(); err != nil {
		problems = append(problems, err.Error())
	}

	if !a.isSidecar(path) {
		doc, err := a.store.Load(path)
		if err != nil {
			return opError("validate", path, err)
		}
		n := len([]rune(doc.Content))
		for _, iv := range meta.Ranges {
			if iv.End > n {
				problems = append(problems, fmt.Sprintf("range %s extends past text of %d runes", iv, n))
			}
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(a.stdout, "%s: %s\n", path, p)
		}
		return opError("validate", path, ErrInvalidMetadata)
	}
	fmt.Fprintf(a.stdout, "%s: ok (%d ranges)\n", path, len(meta.Ranges))
	return nil
}

// Merge combines the metadata of two files and writes the envelope to out,
// or to stdout when out is empty.
func (a *App) Merge(pathA, pathB, out string) error {
	metaA, err := a.loadMetadata(pathA)
	if err != nil {
		return opError("merge", pathA, err)
	}
	metaB, err := a.loadMetadata(pathB)
	if err != nil {
		return opError("merge", pathB, err)
	}
	if metaA == nil && metaB == nil {
		return opError("merge", pathA, ErrNoMetadata)
	}

	merged := a.codec.Merge(metaA, metaB)
	encoded, err := a.codec.Encode(merged.Ranges)
	if err != nil {
		return opError("merge", out, err)
	}

	if out == "" {
		fmt.Fprintln(a.stdout, encoded)
		return nil
	}
	if err := os.WriteFile(out, []byte(encoded), 0o644); err != nil {
		return opError("merge", out, err)
	}
	a.log.Info("merged %d ranges into %s", len(merged.Ranges), out)
	fmt.Fprintf(a.stdout, "wrote %s (%d ranges)\n", out, len(merged.Ranges))
	return nil
}

// ExportMeta writes the metadata of path to its sidecar file.
func (a *App) ExportMeta(path string) error {
	meta, err := a.loadMetadata(path)
	if err != nil {
		return opError("export-meta", path, err)
	}
	if meta == nil {
		return opError("export-meta", path, ErrNoMetadata)
	}
	if err := a.store.ExportSidecar(path, meta.Ranges); err != nil {
		return opError("export-meta", path, err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", a.store.SidecarPath(path))
	return nil
}

// ImportMeta joins path's text with its sidecar metadata into an embedded
// document at out, defaulting to path plus the embedded suffix.
func (a *App) ImportMeta(path, out string) error {
	sess := a.NewSession()
	if err := a.requireFile(path); err != nil {
		return opError("import-meta", path, err)
	}
	if err := sess.Open(path); err != nil {
		return opError("import-meta", path, err)
	}
	if sess.Tracker().Len() == 0 {
		return opError("import-meta", path, ErrNoMetadata)
	}

	if out == "" {
		out = a.store.SuggestName(path)
	}
	if !a.store.IsEmbedded(out) {
		return opError("import-meta", out, fmt.Errorf("output must end in %s", a.cfg.Document.Suffix))
	}
	if err := sess.Save(out); err != nil {
		return opError("import-meta", out, err)
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", out)
	return nil
}

func (a *App) requireFile(path string) error {
	info, err := a.store.Info(path)
	if err != nil {
		return err
	}
	if !info.Exists {
		return fs.ErrNotExist
	}
	return nil
}

func writeStats(w io.Writer, path string, st metadata.Stats) {
	assessment := st.Assessment()
	fmt.Fprintf(w, "File:          %s\n", path)
	fmt.Fprintf(w, "Characters:    %d\n", st.TotalChars)
	fmt.Fprintf(w, "Typed:         %d (%.1f%%)\n", st.TypedChars, st.TypedPercentage)
	fmt.Fprintf(w, "Pasted:        %d (%.1f%%)\n", st.PastedChars, st.PastedPercentage)
	fmt.Fprintf(w, "Unknown:       %d (%.1f%%)\n", st.UnknownChars, st.UnknownPercentage)
	fmt.Fprintf(w, "Ranges:        %d (%d typed, %d pasted)\n", st.TotalRanges, st.TypedRanges, st.PastedRanges)
	fmt.Fprintf(w, "Authenticity:  %s - %s\n", assessment, assessment.Description())
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
