package metadata

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dshills/ghostkey/internal/engine/provenance"
)

func TestComputeStats(t *testing.T) {
	m, p := provenance.SourceManual, provenance.SourcePasted
	set := provenance.Set{iv(0, 5, m, 1), iv(5, 6, p, 2), iv(8, 10, m, 3)}

	st := ComputeStats(set, 20)

	if st.TotalChars != 20 || st.TypedChars != 7 || st.PastedChars != 1 || st.UnknownChars != 12 {
		t.Errorf("counts = %+v", st)
	}
	if st.TotalRanges != 3 || st.TypedRanges != 2 || st.PastedRanges != 1 {
		t.Errorf("range counts = %+v", st)
	}
	if !approx(st.TypedPercentage, 35) || !approx(st.PastedPercentage, 5) || !approx(st.UnknownPercentage, 60) {
		t.Errorf("percentages = %v %v %v", st.TypedPercentage, st.PastedPercentage, st.UnknownPercentage)
	}
}

func TestComputeStats_ZeroLength(t *testing.T) {
	st := ComputeStats(provenance.Set{iv(0, 5, provenance.SourceManual, 1)}, 0)
	if st.TypedPercentage != 0 || st.PastedPercentage != 0 || st.UnknownPercentage != 0 {
		t.Errorf("percentages for empty buffer = %+v", st)
	}
	if math.IsNaN(st.TypedPercentage) {
		t.Error("NaN percentage")
	}
}

func TestComputeStats_NilSet(t *testing.T) {
	st := ComputeStats(nil, 42)
	if st.UnknownChars != 42 || st.UnknownPercentage != 100 {
		t.Errorf("nil set should be all unknown: %+v", st)
	}
	if st.TotalRanges != 0 {
		t.Errorf("TotalRanges = %d", st.TotalRanges)
	}
}

func TestComputeStats_ClampsToBuffer(t *testing.T) {
	m, p := provenance.SourceManual, provenance.SourcePasted
	// Coverage past the end and overlapping sources from a merge.
	set := provenance.Set{iv(0, 6, m, 1), iv(4, 12, p, 2)}

	st := ComputeStats(set, 10)
	if st.TypedChars != 6 || st.PastedChars != 4 || st.UnknownChars != 0 {
		t.Errorf("counts = %+v", st)
	}
	if st.TypedRanges != 1 || st.PastedRanges != 1 {
		t.Errorf("range counts = %+v", st)
	}
}

func TestComputeStats_PercentagesSumTo100(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 500; round++ {
		var set provenance.Set
		for i := rng.Intn(8); i > 0; i-- {
			start := rng.Intn(60)
			src := provenance.SourceManual
			if rng.Intn(2) == 0 {
				src = provenance.SourcePasted
			}
			set = append(set, iv(start, start+1+rng.Intn(20), src, 1))
		}
		total := 1 + rng.Intn(80)

		st := ComputeStats(set, total)
		sum := st.TypedPercentage + st.PastedPercentage + st.UnknownPercentage
		if math.Abs(sum-100) > 1e-9 {
			t.Fatalf("round %d: percentages sum to %v (%+v)", round, sum, st)
		}
		if st.TypedPercentage < 0 || st.PastedPercentage < 0 || st.UnknownPercentage < 0 {
			t.Fatalf("round %d: negative percentage %+v", round, st)
		}
	}
}

func TestStats_Assessment(t *testing.T) {
	tests := []struct {
		pasted float64
		total  int
		want   Authenticity
	}{
		{0, 0, AuthenticityNone},
		{80, 10, AuthenticityLow},
		{70, 10, AuthenticityMedium},
		{41, 10, AuthenticityMedium},
		{40, 10, AuthenticityHigh},
		{16, 10, AuthenticityHigh},
		{15, 10, AuthenticityVeryHigh},
		{0, 10, AuthenticityVeryHigh},
	}
	for _, tt := range tests {
		st := Stats{TotalChars: tt.total, PastedPercentage: tt.pasted}
		if got := st.Assessment(); got != tt.want {
			t.Errorf("Assessment(pasted=%v) = %v, want %v", tt.pasted, got, tt.want)
		}
	}
	if AuthenticityLow.Description() == "" || AuthenticityVeryHigh.String() != "very high" {
		t.Error("labels missing")
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
