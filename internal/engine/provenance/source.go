package provenance

// Source identifies how a span of text entered the buffer.
type Source uint8

const (
	// SourceUnknown marks text with no recorded provenance.
	SourceUnknown Source = iota
	// SourceManual marks text entered keystroke by keystroke.
	SourceManual
	// SourcePasted marks text inserted by a paste operation.
	SourcePasted
)

// String returns the persisted name of the source.
func (s Source) String() string {
	switch s {
	case SourceManual:
		return "manual"
	case SourcePasted:
		return "pasted"
	default:
		return "unknown"
	}
}

// IsTracked reports whether s may label an Interval.
func (s Source) IsTracked() bool {
	return s == SourceManual || s == SourcePasted
}

// ParseSource converts a persisted name back to a Source.
// The boolean is false for anything other than "manual" or "pasted".
func ParseSource(name string) (Source, bool) {
	switch name {
	case "manual":
		return SourceManual, true
	case "pasted":
		return SourcePasted, true
	default:
		return SourceUnknown, false
	}
}
