package metadata

import "github.com/dshills/ghostkey/internal/engine/provenance"

// Stats summarizes the provenance of a buffer.
type Stats struct {
	TotalChars   int
	TypedChars   int
	PastedChars  int
	UnknownChars int

	TypedPercentage   float64
	PastedPercentage  float64
	UnknownPercentage float64

	TotalRanges  int
	TypedRanges  int
	PastedRanges int
}

// ComputeStats counts typed, pasted and untracked characters of a buffer of
// totalLength runes. A nil set reports the whole buffer as unknown.
//
// Only coverage inside [0, totalLength) is counted and a character claimed by
// several overlapping ranges is counted once, for the first of them by start,
// so the three percentages always add up to 100 for a non-empty buffer.
// Range counts include every range as given.
func ComputeStats(set provenance.Set, totalLength int) Stats {
	if totalLength < 0 {
		totalLength = 0
	}
	st := Stats{
		TotalChars:  totalLength,
		TotalRanges: len(set),
	}

	sorted := set.Clone()
	sorted.SortByStart()

	covered := 0
	for _, iv := range sorted {
		switch iv.Source {
		case provenance.SourceManual:
			st.TypedRanges++
		case provenance.SourcePasted:
			st.PastedRanges++
		}

		start := max(iv.Start, covered, 0)
		end := min(iv.End, totalLength)
		if end <= start {
			continue
		}
		covered = end

		switch iv.Source {
		case provenance.SourceManual:
			st.TypedChars += end - start
		case provenance.SourcePasted:
			st.PastedChars += end - start
		}
	}

	st.UnknownChars = max(0, totalLength-st.TypedChars-st.PastedChars)

	if totalLength > 0 {
		total := float64(totalLength)
		st.TypedPercentage = float64(st.TypedChars) / total * 100
		st.PastedPercentage = float64(st.PastedChars) / total * 100
		st.UnknownPercentage = float64(st.UnknownChars) / total * 100
	}
	return st
}

// Authenticity rates how much of a document was typed rather than pasted.
type Authenticity int

const (
	// AuthenticityNone means the document is empty.
	AuthenticityNone Authenticity = iota
	AuthenticityLow
	AuthenticityMedium
	AuthenticityHigh
	AuthenticityVeryHigh
)

// String returns a short label.
func (a Authenticity) String() string {
	switch a {
	case AuthenticityLow:
		return "low"
	case AuthenticityMedium:
		return "medium"
	case AuthenticityHigh:
		return "high"
	case AuthenticityVeryHigh:
		return "very high"
	default:
		return "n/a"
	}
}

// Description explains the rating in a sentence.
func (a Authenticity) Description() string {
	switch a {
	case AuthenticityLow:
		return "Heavily dependent on external content"
	case AuthenticityMedium:
		return "Significant external content mixed with original"
	case AuthenticityHigh:
		return "Mostly original with some external references"
	case AuthenticityVeryHigh:
		return "Predominantly original content"
	default:
		return "Empty document"
	}
}

// Assessment rates the document by its pasted share: above 70% is low,
// above 40% medium, above 15% high, anything else very high.
func (s Stats) Assessment() Authenticity {
	switch {
	case s.TotalChars == 0:
		return AuthenticityNone
	case s.PastedPercentage > 70:
		return AuthenticityLow
	case s.PastedPercentage > 40:
		return AuthenticityMedium
	case s.PastedPercentage > 15:
		return AuthenticityHigh
	default:
		return AuthenticityVeryHigh
	}
}
