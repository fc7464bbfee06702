package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
	"github.com/dshills/ghostkey/internal/metadata"
)

// Default file name suffixes.
const (
	DefaultSuffix        = ".lakra"
	DefaultSidecarSuffix = ".meta"
)

const utf8BOM = "\uFEFF"

// Document is a loaded file.
type Document struct {
	// Path is the file the document was read from.
	Path string

	// Content is the text without any embedded metadata.
	Content string

	// Metadata is the decoded provenance, nil when the file has none.
	Metadata *metadata.Metadata
}

// Info describes a file on disk.
type Info struct {
	Exists      bool
	Size        int64
	Modified    time.Time
	Embedded    bool
	HasMetadata bool
}

// Option configures a Store.
type Option func(*Store)

// WithSuffix sets the suffix of files that embed metadata.
func WithSuffix(suffix string) Option {
	return func(s *Store) {
		if suffix != "" {
			s.suffix = suffix
		}
	}
}

// WithSidecarSuffix sets the suffix appended to a path to name its sidecar.
func WithSidecarSuffix(suffix string) Option {
	return func(s *Store) {
		if suffix != "" {
			s.sidecarSuffix = suffix
		}
	}
}

// WithCodec sets the metadata codec.
func WithCodec(c *metadata.Codec) Option {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l.WithComponent("document")
		}
	}
}

// Store reads and writes documents. It holds no per-file state.
type Store struct {
	suffix        string
	sidecarSuffix string
	codec         *metadata.Codec
	log           *logging.Logger
}

// NewStore creates a Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		suffix:        DefaultSuffix,
		sidecarSuffix: DefaultSidecarSuffix,
		log:           logging.NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.codec == nil {
		s.codec = metadata.NewCodec(metadata.WithCodecLogger(s.log))
	}
	return s
}

// IsEmbedded reports whether path uses the embedded-metadata layout.
func (s *Store) IsEmbedded(path string) bool {
	return strings.HasSuffix(path, s.suffix)
}

// BaseFormat returns the extension under the embedded suffix, lowercased and
// without the dot: "notes.md.lakra" gives "md", "notes.lakra" gives "txt".
// It returns "" for paths that do not use the embedded layout.
func (s *Store) BaseFormat(path string) string {
	if !s.IsEmbedded(path) {
		return ""
	}
	base := filepath.Base(strings.TrimSuffix(path, s.suffix))
	if ext := filepath.Ext(base); ext != "" && ext != base {
		return strings.ToLower(ext[1:])
	}
	return "txt"
}

// SuggestName returns path with the embedded suffix appended if missing.
func (s *Store) SuggestName(path string) string {
	if s.IsEmbedded(path) {
		return path
	}
	return path + s.suffix
}

// SidecarPath returns the sidecar file name for path.
func (s *Store) SidecarPath(path string) string {
	return path + s.sidecarSuffix
}

// Load reads a document. Embedded metadata that is missing or malformed
// yields a Document with nil Metadata, not an error.
func (s *Store) Load(path string) (*Document, error) {
	data, err := readRegular(path)
	if err != nil {
		return nil, &PathError{Op: "load", Path: path, Err: err}
	}
	text := strings.TrimPrefix(string(data), utf8BOM)

	doc := &Document{Path: path, Content: text}
	if !s.IsEmbedded(path) {
		return doc, nil
	}

	content, encoded, ok := Extract(text)
	doc.Content = content
	if !ok {
		if strings.Contains(text, StartDelimiter) {
			s.log.Warn("%s: metadata start delimiter without end delimiter", path)
		}
		return doc, nil
	}
	doc.Metadata = s.codec.Decode(encoded)
	return doc, nil
}

// Save writes content to path, creating parent directories. Files using the
// embedded layout also get set appended; if set fails validation the text is
// saved alone and a warning is logged.
func (s *Store) Save(path, content string, set provenance.Set) error {
	out := content
	if s.IsEmbedded(path) {
		if s.codec.Validate(set) {
			encoded, err := s.codec.Encode(set)
			if err != nil {
				return &PathError{Op: "save", Path: path, Err: err}
			}
			out = Embed(content, encoded)
		} else {
			s.log.Warn("%s: invalid metadata, saving text only", path)
		}
	}

	if err := writeFile(path, []byte(out)); err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// ExportSidecar writes the encoded envelope for set next to path.
func (s *Store) ExportSidecar(path string, set provenance.Set) error {
	encoded, err := s.codec.Encode(set)
	if err != nil {
		return &PathError{Op: "export", Path: path, Err: err}
	}
	if err := writeFile(s.SidecarPath(path), []byte(encoded)); err != nil {
		return &PathError{Op: "export", Path: path, Err: err}
	}
	return nil
}

// ImportSidecar reads the sidecar of path. A missing sidecar returns nil
// without error; a malformed one returns nil and is logged by the codec.
func (s *Store) ImportSidecar(path string) (*metadata.Metadata, error) {
	data, err := readRegular(s.SidecarPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &PathError{Op: "import", Path: path, Err: err}
	}
	return s.codec.Decode(string(data)), nil
}

// Backup copies path to path.backup, or path.backup.N for the first free N,
// and returns the name used.
func (s *Store) Backup(path string) (string, error) {
	data, err := readRegular(path)
	if err != nil {
		return "", &PathError{Op: "backup", Path: path, Err: err}
	}

	target := path + ".backup"
	for n := 1; exists(target); n++ {
		target = fmt.Sprintf("%s.backup.%d", path, n)
	}
	if err := writeFile(target, data); err != nil {
		return "", &PathError{Op: "backup", Path: path, Err: err}
	}
	return target, nil
}

// Info describes path. A missing file is reported with Exists false.
func (s *Store) Info(path string) (Info, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Info{}, nil
		}
		return Info{}, &PathError{Op: "stat", Path: path, Err: err}
	}

	info := Info{
		Exists:   true,
		Size:     st.Size(),
		Modified: st.ModTime(),
		Embedded: s.IsEmbedded(path),
	}
	if info.Embedded {
		if doc, err := s.Load(path); err == nil {
			info.HasMetadata = doc.Metadata != nil
		}
	}
	return info, nil
}

func readRegular(path string) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, ErrNotRegular
	}
	return os.ReadFile(path)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
