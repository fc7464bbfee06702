package metadata

import (
	"math"
	"strconv"
	"time"

	"github.com/dshills/ghostkey/internal/engine/provenance"
)

// Version is the envelope version written by this package.
const Version = "1.0"

// JSON keys of the persisted form.
const (
	envelopeKey  = "ghostkey_metadata"
	versionKey   = "version"
	createdKey   = "created"
	dataKey      = "data"
	rangesKey    = "ranges"
	startKey     = "start"
	endKey       = "end"
	sourceKey    = "source"
	timestampKey = "timestamp"
)

// Metadata is a decoded or merged provenance payload.
type Metadata struct {
	// Version is the envelope version, empty for the legacy bare form.
	Version string

	// Created is when the envelope was written, zero if unknown.
	Created time.Time

	// Ranges holds the intervals in the order they were stored.
	Ranges provenance.Set
}

// Wire shapes of the envelope. Field order here is the order on disk.
type (
	envelopeJSON struct {
		Meta envelopeBody `json:"ghostkey_metadata"`
	}
	envelopeBody struct {
		Version string      `json:"version"`
		Created epoch       `json:"created"`
		Data    payloadJSON `json:"data"`
	}
	payloadJSON struct {
		Ranges []rangeJSON `json:"ranges"`
	}
	rangeJSON struct {
		Start     int    `json:"start"`
		End       int    `json:"end"`
		Source    string `json:"source"`
		Timestamp epoch  `json:"timestamp"`
	}
)

// epoch marshals a time as fractional Unix seconds.
type epoch time.Time

// MarshalJSON implements json.Marshaler.
func (e epoch) MarshalJSON() ([]byte, error) {
	return []byte(formatEpoch(time.Time(e))), nil
}

// formatEpoch renders t as fractional Unix seconds.
func formatEpoch(t time.Time) string {
	if t.IsZero() {
		return "0"
	}
	secs := float64(t.Unix()) + float64(t.Nanosecond())/1e9
	return strconv.FormatFloat(secs, 'f', -1, 64)
}

// parseEpoch converts fractional Unix seconds back to a time.
func parseEpoch(secs float64) time.Time {
	if secs == 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*1e9)))
}
