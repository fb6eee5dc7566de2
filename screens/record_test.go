package screens

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"
)

func TestPackedCountsParsing(t *testing.T) {
	for _, v := range []struct {
		Field   string
		Want    []int64
		Missing []int
	}{
		{"[10,20,30]", []int64{10, 20, 30}, nil},
		{"[7]", []int64{7}, nil},
		{"[10,,30]", []int64{10, 0, 30}, []int{1}},
		{"[ 4 , 5 ]", []int64{4, 5}, nil},
		{"[1,x,3]", []int64{1, 0, 3}, []int{1}},
	} {
		var p PackedCounts
		if err := p.UnmarshalCSV(v.Field); err != nil {
			t.Fatalf("Error parsing %q: %v", v.Field, err)
		}
		if len(p) != len(v.Want) {
			t.Fatalf("Parsing %q: got %d slots, expected %d", v.Field, len(p), len(v.Want))
		}

		missing := make(map[int]struct{})
		for _, i := range v.Missing {
			missing[i] = struct{}{}
		}
		for i, got := range p {
			if _, isMissing := missing[i]; isMissing {
				if got.Valid {
					t.Fatalf("Parsing %q: slot %d should be missing, got %d", v.Field, i, got.Int64)
				}
				continue
			}
			if !got.Valid || got.Int64 != v.Want[i] {
				t.Fatalf("Parsing %q: slot %d got %+v, expected %d", v.Field, i, got, v.Want[i])
			}
		}
	}
}

func TestPackedCountsEmptyMarker(t *testing.T) {
	for _, field := range []string{"[]", "", "  "} {
		var p PackedCounts
		if err := p.UnmarshalCSV(field); err != nil {
			t.Fatalf("Error parsing %q: %v", field, err)
		}
		if !p.IsEmptyMarker() {
			t.Fatalf("Parsing %q: expected the empty marker, got %d slots", field, len(p))
		}
	}
}

// Disentangling a field built by comma-joining k integers must recover
// exactly k columns with the original values, for any k >= 1.
func TestPackedCountsLeftInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for k := 1; k <= 12; k++ {
		want := make([]int64, k)
		tokens := make([]string, k)
		for i := range want {
			want[i] = rng.Int63n(100000)
			tokens[i] = strconv.FormatInt(want[i], 10)
		}
		field := "[" + strings.Join(tokens, ",") + "]"

		var p PackedCounts
		if err := p.UnmarshalCSV(field); err != nil {
			t.Fatalf("Error parsing %q: %v", field, err)
		}
		if len(p) != k {
			t.Fatalf("Parsing %q: got %d slots, expected %d", field, len(p), k)
		}
		for i, got := range p {
			if !got.Valid || got.Int64 != want[i] {
				t.Fatalf("Parsing %q: slot %d got %+v, expected %d", field, i, got, want[i])
			}
		}

		repacked, err := p.MarshalCSV()
		if err != nil {
			t.Fatalf("Error repacking %q: %v", field, err)
		}
		if repacked != field {
			t.Fatalf("Repacking: got %q, expected %q", repacked, field)
		}
	}
}

func TestGuideID(t *testing.T) {
	rec := Record{Symbol: "BRCA1", Sequence: "ACGTACGT"}
	if want := "BRCA1:ACGTACGT"; rec.GuideID() != want {
		t.Fatalf("GuideID: got %q, expected %q", rec.GuideID(), want)
	}
}

func ExamplePackedCounts() {
	var p PackedCounts
	p.UnmarshalCSV("[100,200,300]")
	fmt.Println(len(p), p[0].Int64)
	// Output: 3 100
}
