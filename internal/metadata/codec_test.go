package metadata

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dshills/ghostkey/internal/engine/provenance"
	"github.com/dshills/ghostkey/internal/logging"
)

var testNow = time.Unix(1700000000, 500000000)

func newTestCodec() *Codec {
	return NewCodec(WithCodecClock(func() time.Time { return testNow }))
}

func sampleSet() provenance.Set {
	return provenance.Set{
		{Start: 0, End: 5, Source: provenance.SourceManual, Timestamp: time.Unix(1700000001, 0)},
		{Start: 5, End: 6, Source: provenance.SourcePasted, Timestamp: time.Unix(1700000002, 250000000)},
	}
}

func TestCodec_EncodeExactBytes(t *testing.T) {
	got, err := newTestCodec().Encode(sampleSet())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `{"ghostkey_metadata":{"version":"1.0","created":1700000000.5,"data":{"ranges":[` +
		`{"start":0,"end":5,"source":"manual","timestamp":1700000001},` +
		`{"start":5,"end":6,"source":"pasted","timestamp":1700000002.25}]}}}`
	if got != want {
		t.Errorf("Encode mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestCodec_EncodeEmpty(t *testing.T) {
	for _, set := range []provenance.Set{nil, {}} {
		got, err := newTestCodec().Encode(set)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		want := `{"ghostkey_metadata":{"version":"1.0","created":1700000000.5,"data":{"ranges":[]}}}`
		if got != want {
			t.Errorf("Encode(%v) = %s, want %s", set, got, want)
		}
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	c := newTestCodec()
	in := sampleSet()

	text, err := c.Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	md := c.Decode(text)
	if md == nil {
		t.Fatal("Decode returned nil")
	}
	if md.Version != Version {
		t.Errorf("Version = %q, want %q", md.Version, Version)
	}
	if !md.Created.Equal(testNow) {
		t.Errorf("Created = %v, want %v", md.Created, testNow)
	}
	if len(md.Ranges) != len(in) {
		t.Fatalf("got %d ranges, want %d", len(md.Ranges), len(in))
	}
	for i := range in {
		g, w := md.Ranges[i], in[i]
		if g.Start != w.Start || g.End != w.End || g.Source != w.Source {
			t.Errorf("range %d = %v, want %v", i, g, w)
		}
		if !g.Timestamp.Equal(w.Timestamp) {
			t.Errorf("range %d timestamp = %v, want %v", i, g.Timestamp, w.Timestamp)
		}
	}
}

func TestCodec_DecodeLegacy(t *testing.T) {
	c := newTestCodec()
	md := c.Decode(`{"ranges":[{"start":0,"end":3,"source":"pasted","timestamp":1699999999}]}`)
	if md == nil {
		t.Fatal("legacy form should decode")
	}
	if md.Version != "" {
		t.Errorf("legacy Version = %q, want empty", md.Version)
	}
	if len(md.Ranges) != 1 || md.Ranges[0].Source != provenance.SourcePasted || md.Ranges[0].End != 3 {
		t.Errorf("unexpected ranges %v", md.Ranges)
	}
}

func TestCodec_DecodeToleratesExtras(t *testing.T) {
	c := newTestCodec()
	// Older writers nested the tracker version inside data.
	text := `{"ghostkey_metadata":{"version":"1.0","created":1.5,"data":{"version":"1.1","ranges":[{"start":1,"end":2,"source":"manual","extra":true}]}}}`
	md := c.Decode(text)
	if md == nil {
		t.Fatal("Decode returned nil")
	}
	if len(md.Ranges) != 1 {
		t.Fatalf("ranges = %v", md.Ranges)
	}
	if !md.Ranges[0].Timestamp.Equal(testNow) {
		t.Errorf("missing timestamp should default to clock, got %v", md.Ranges[0].Timestamp)
	}
}

func TestCodec_DecodeAbsent(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"blank", "  \n\t"},
		{"not json", "not json"},
		{"truncated", `{"ghostkey_metadata":{"version":"1.0"`},
		{"array", `[1,2,3]`},
		{"no ranges", `{"something":"else"}`},
		{"envelope without data", `{"ghostkey_metadata":{"version":"1.0"}}`},
		{"envelope not object", `{"ghostkey_metadata":"x"}`},
		{"ranges not array", `{"ranges":{"start":0}}`},
		{"range not object", `{"ranges":[42]}`},
		{"missing start", `{"ranges":[{"end":2,"source":"manual"}]}`},
		{"string start", `{"ranges":[{"start":"0","end":2,"source":"manual"}]}`},
		{"float end", `{"ranges":[{"start":0,"end":2.5,"source":"manual"}]}`},
		{"exponent end", `{"ranges":[{"start":0,"end":2e1,"source":"manual"}]}`},
		{"missing source", `{"ranges":[{"start":0,"end":2}]}`},
		{"numeric source", `{"ranges":[{"start":0,"end":2,"source":1}]}`},
		{"unknown source", `{"ranges":[{"start":0,"end":2,"source":"dictated"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if md := newTestCodec().Decode(tt.text); md != nil {
				t.Errorf("Decode(%q) = %+v, want nil", tt.text, md)
			}
		})
	}
}

func TestCodec_DecodeLogsCause(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LogLevelDebug, Output: &buf})
	c := NewCodec(WithCodecLogger(logger))

	if c.Decode("not json") != nil {
		t.Fatal("expected nil")
	}
	out := buf.String()
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "not valid JSON") {
		t.Errorf("expected warn log with cause, got %q", out)
	}
	if !strings.Contains(out, "component=metadata") {
		t.Errorf("expected component field, got %q", out)
	}

	buf.Reset()
	_ = c.Decode("")
	if buf.Len() != 0 {
		t.Errorf("empty input should not log, got %q", buf.String())
	}
}

func TestCodec_DecodeKeepsStructurallyOddRanges(t *testing.T) {
	// Decode checks types only; invariant checks belong to Validate.
	md := newTestCodec().Decode(`{"ranges":[{"start":5,"end":2,"source":"manual"}]}`)
	if md == nil {
		t.Fatal("Decode returned nil")
	}
	if newTestCodec().Validate(md.Ranges) {
		t.Error("Validate should reject start > end")
	}
}

func TestCodec_Validate(t *testing.T) {
	c := newTestCodec()
	m := provenance.SourceManual
	p := provenance.SourcePasted

	tests := []struct {
		name string
		set  provenance.Set
		want bool
	}{
		{"nil", nil, true},
		{"valid", provenance.Set{{Start: 0, End: 2, Source: m}, {Start: 2, End: 4, Source: p}}, true},
		{"zero length", provenance.Set{{Start: 2, End: 2, Source: m}}, false},
		{"negative", provenance.Set{{Start: -1, End: 2, Source: m}}, false},
		{"unknown source", provenance.Set{{Start: 0, End: 2, Source: provenance.SourceUnknown}}, false},
		// Ordering and overlap are outside Validate's scope.
		{"overlapping", provenance.Set{{Start: 0, End: 5, Source: m}, {Start: 3, End: 8, Source: p}}, true},
		{"unsorted", provenance.Set{{Start: 5, End: 8, Source: m}, {Start: 0, End: 2, Source: p}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Validate(tt.set); got != tt.want {
				t.Errorf("Validate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEpochRoundTrip(t *testing.T) {
	for _, ts := range []time.Time{
		time.Unix(1700000000, 0),
		time.Unix(1700000000, 250000000),
		time.Unix(1, 500000000),
	} {
		if got := parseEpoch(mustFloat(t, formatEpoch(ts))); !got.Equal(ts) {
			t.Errorf("epoch round trip %v -> %v", ts, got)
		}
	}
	if formatEpoch(time.Time{}) != "0" {
		t.Errorf("zero time should encode as 0")
	}
	if !parseEpoch(0).IsZero() {
		t.Errorf("0 should decode as zero time")
	}
}

func mustFloat(t *testing.T, s string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("ParseFloat(%q): %v", s, err)
	}
	return f
}
