package metadata

import (
	"testing"
	"time"

	"github.com/dshills/ghostkey/internal/engine/provenance"
)

func iv(start, end int, src provenance.Source, sec int64) provenance.Interval {
	return provenance.Interval{Start: start, End: end, Source: src, Timestamp: time.Unix(sec, 0)}
}

func sameSpans(a, b provenance.Set) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Start != b[i].Start || a[i].End != b[i].End || a[i].Source != b[i].Source {
			return false
		}
	}
	return true
}

func TestMerge(t *testing.T) {
	m, p := provenance.SourceManual, provenance.SourcePasted

	tests := []struct {
		name string
		a, b provenance.Set
		want provenance.Set
	}{
		{
			name: "disjoint inputs interleave",
			a:    provenance.Set{iv(0, 3, m, 1), iv(10, 12, m, 1)},
			b:    provenance.Set{iv(4, 6, p, 2)},
			want: provenance.Set{iv(0, 3, m, 0), iv(4, 6, p, 0), iv(10, 12, m, 0)},
		},
		{
			name: "touching same source coalesces",
			a:    provenance.Set{iv(0, 5, m, 1)},
			b:    provenance.Set{iv(5, 9, m, 2)},
			want: provenance.Set{iv(0, 9, m, 0)},
		},
		{
			name: "overlapping same source coalesces",
			a:    provenance.Set{iv(0, 6, m, 1)},
			b:    provenance.Set{iv(2, 4, m, 2), iv(5, 8, m, 3)},
			want: provenance.Set{iv(0, 8, m, 0)},
		},
		{
			name: "overlapping different sources stay separate",
			a:    provenance.Set{iv(0, 6, m, 1)},
			b:    provenance.Set{iv(3, 8, p, 2)},
			want: provenance.Set{iv(0, 6, m, 0), iv(3, 8, p, 0)},
		},
		{
			name: "nil inputs",
			want: provenance.Set{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestCodec().Merge(&Metadata{Ranges: tt.a}, &Metadata{Ranges: tt.b})
			if got.Version != Version {
				t.Errorf("Version = %q, want %q", got.Version, Version)
			}
			if !sameSpans(got.Ranges, tt.want) {
				t.Errorf("Merge = %v, want %v", got.Ranges, tt.want)
			}
		})
	}
}

func TestMerge_NilMetadata(t *testing.T) {
	c := newTestCodec()
	a := &Metadata{Version: "0.9", Ranges: provenance.Set{iv(0, 2, provenance.SourceManual, 1)}}

	got := c.Merge(a, nil)
	if got.Version != Version {
		t.Errorf("Version = %q, want reset to %q", got.Version, Version)
	}
	if !sameSpans(got.Ranges, a.Ranges) {
		t.Errorf("Merge(a, nil) = %v", got.Ranges)
	}
	if len(c.Merge(nil, nil).Ranges) != 0 {
		t.Error("Merge(nil, nil) should be empty")
	}
}

func TestMerge_KeepsEarlierTimestamp(t *testing.T) {
	a := &Metadata{Ranges: provenance.Set{iv(0, 5, provenance.SourceManual, 50)}}
	b := &Metadata{Ranges: provenance.Set{iv(3, 9, provenance.SourceManual, 10)}}

	got := newTestCodec().Merge(a, b)
	if len(got.Ranges) != 1 {
		t.Fatalf("ranges = %v", got.Ranges)
	}
	if !got.Ranges[0].Timestamp.Equal(time.Unix(10, 0)) {
		t.Errorf("timestamp = %v, want the earlier one", got.Ranges[0].Timestamp)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	a := &Metadata{Ranges: provenance.Set{iv(0, 5, provenance.SourceManual, 1)}}
	b := &Metadata{Ranges: provenance.Set{iv(5, 9, provenance.SourceManual, 2)}}

	_ = newTestCodec().Merge(a, b)
	if a.Ranges[0].End != 5 || b.Ranges[0].Start != 5 {
		t.Errorf("inputs modified: %v %v", a.Ranges, b.Ranges)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	m, p := provenance.SourceManual, provenance.SourcePasted
	a := &Metadata{Ranges: provenance.Set{iv(0, 4, m, 1), iv(4, 7, p, 2), iv(9, 12, m, 3)}}
	b := &Metadata{Ranges: provenance.Set{iv(3, 5, m, 4), iv(12, 14, m, 5)}}

	c := newTestCodec()
	once := c.Merge(a, b)
	twice := c.Merge(once, nil)
	if !sameSpans(once.Ranges, twice.Ranges) {
		t.Errorf("merge not idempotent: %v vs %v", once.Ranges, twice.Ranges)
	}
	self := c.Merge(once, once)
	if !sameSpans(once.Ranges, self.Ranges) {
		t.Errorf("merging with itself changed the set: %v vs %v", once.Ranges, self.Ranges)
	}
}

func TestMerge_UsesCodecClock(t *testing.T) {
	a := &Metadata{Created: time.Unix(5, 0), Ranges: provenance.Set{iv(0, 2, provenance.SourceManual, 1)}}

	got := newTestCodec().Merge(a, a)
	if !got.Created.Equal(testNow) {
		t.Errorf("Created = %v, want %v", got.Created, testNow)
	}
}
