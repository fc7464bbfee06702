package metadata

import (
	"github.com/dshills/ghostkey/internal/engine/provenance"
)

// Merge combines two payloads, typically from independently edited copies of
// one document. Ranges are sorted by start and folded left to right: a range
// joins the previous output range when both share a source and they overlap
// or touch. Ranges of different sources are never merged, so the result may
// still overlap where the inputs disagree. Either argument may be nil. The
// result is stamped with the codec's clock.
func (c *Codec) Merge(a, b *Metadata) *Metadata {
	var all provenance.Set
	if a != nil {
		all = append(all, a.Ranges...)
	}
	if b != nil {
		all = append(all, b.Ranges...)
	}
	all.SortByStart()

	out := make(provenance.Set, 0, len(all))
	for _, iv := range all {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if last.Source == iv.Source && last.End >= iv.Start {
				last.End = max(last.End, iv.End)
				if iv.Timestamp.Before(last.Timestamp) {
					last.Timestamp = iv.Timestamp
				}
				continue
			}
		}
		out = append(out, iv)
	}

	return &Metadata{
		Version: Version,
		Created: c.now(),
		Ranges:  out,
	}
}
