package document

import "strings"

// Delimiters around the embedded envelope.
const (
	StartDelimiter = "<!-- GHOSTKEY_METADATA_START -->"
	EndDelimiter   = "<!-- GHOSTKEY_METADATA_END -->"
)

// separator sits between the text and the start delimiter.
const separator = "\n\n"

// Embed appends an encoded envelope to content.
func Embed(content, encoded string) string {
	var b strings.Builder
	b.Grow(len(content) + len(encoded) + len(StartDelimiter) + len(EndDelimiter) + 4)
	b.WriteString(content)
	b.WriteString(separator)
	b.WriteString(StartDelimiter)
	b.WriteByte('\n')
	b.WriteString(encoded)
	b.WriteByte('\n')
	b.WriteString(EndDelimiter)
	return b.String()
}

// Extract splits file text into content and the encoded envelope.
//
// The envelope is located by the last start delimiter, so content that itself
// contains the delimiter lines survives a round trip. Without a start delimiter the whole text is content and ok is false. With a
// start delimiter but no end delimiter, content stops at the start delimiter
// and ok is still false. The blank-line separator written by Embed is not part
// of the content.
func Extract(text string) (content, encoded string, ok bool) {
	start := strings.LastIndex(text, StartDelimiter)
	if start < 0 {
		return text, "", false
	}

	content = text[:start]
	if trimmed, cut := strings.CutSuffix(content, separator); cut {
		content = trimmed
	} else {
		content = strings.TrimSuffix(content, "\n")
	}

	rest := text[start+len(StartDelimiter):]
	end := strings.Index(rest, EndDelimiter)
	if end < 0 {
		return content, "", false
	}
	return content, strings.TrimSpace(rest[:end]), true
}
