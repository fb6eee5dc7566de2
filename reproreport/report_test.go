package reproreport

import (
	"math"
	"math/rand"
	"testing"

	"github.com/carbocation/screenrepro/paircorr"
)

func entry(experiment string, stage Stage, method paircorr.Method, coeff float64) Entry {
	return Entry{
		Experiment:  experiment,
		Stage:       stage,
		SampleA:     "final_1",
		SampleB:     "final_2",
		Method:      method,
		Coefficient: coeff,
	}
}

func TestAssembleSummaries(t *testing.T) {
	entries := []Entry{
		entry("e1", StageRaw, paircorr.Pearson, 0.9),
		entry("e2", StageRaw, paircorr.Pearson, 0.7),
		entry("e3", StageRaw, paircorr.Pearson, 0.5),
		entry("e1", StageRaw, paircorr.Spearman, 0.8),
		entry("e2", StageRaw, paircorr.Spearman, 0.6),
		entry("e1", StageFoldChange, paircorr.Pearson, 0.4),
	}

	report := Assemble(entries)

	if len(report.Summaries) != 3 {
		t.Fatalf("Expected 3 summaries, got %+v", report.Summaries)
	}

	for _, v := range []struct {
		Stage  Stage
		Method paircorr.Method
		N      int
		Mean   float64
		Median float64
	}{
		{StageRaw, paircorr.Pearson, 3, 0.7, 0.7},
		{StageRaw, paircorr.Spearman, 2, 0.7, 0.7},
		{StageFoldChange, paircorr.Pearson, 1, 0.4, 0.4},
	} {
		var found *Summary
		for i := range report.Summaries {
			s := report.Summaries[i]
			if s.Stage == v.Stage && s.Method == v.Method {
				found = &report.Summaries[i]
				break
			}
		}
		if found == nil {
			t.Fatalf("No summary for %s/%s", v.Stage, v.Method)
		}
		if found.N != v.N {
			t.Fatalf("%s/%s: N got %d, expected %d", v.Stage, v.Method, found.N, v.N)
		}
		if math.Abs(found.Mean-v.Mean) > 1e-12 || math.Abs(found.Median-v.Median) > 1e-12 {
			t.Fatalf("%s/%s: got mean %f median %f, expected %f and %f",
				v.Stage, v.Method, found.Mean, found.Median, v.Mean, v.Median)
		}
	}
}

// The aggregate must not depend on the order entries arrive in.
func TestAssembleOrderIndependent(t *testing.T) {
	entries := []Entry{
		entry("e1", StageRaw, paircorr.Pearson, 0.91),
		entry("e2", StageRaw, paircorr.Pearson, 0.72),
		entry("e3", StageRaw, paircorr.Pearson, 0.55),
		entry("e4", StageRaw, paircorr.Pearson, 0.13),
		entry("e5", StageRaw, paircorr.Pearson, -0.2),
	}

	base := Assemble(entries).Summaries

	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]Entry{}, entries...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := Assemble(shuffled).Summaries
		if len(got) != len(base) {
			t.Fatalf("Summary count changed under shuffling")
		}
		for i := range got {
			if math.Abs(got[i].Mean-base[i].Mean) > 1e-12 ||
				math.Abs(got[i].Median-base[i].Median) > 1e-12 {
				t.Fatalf("Summaries changed under shuffling: %+v vs %+v", got[i], base[i])
			}
		}
	}
}

func TestSampleExperimentsReproducible(t *testing.T) {
	ids := []string{"e5", "e2", "e9", "e1", "e7", "e3"}

	first := SampleExperiments(ids, 3, 42)
	second := SampleExperiments(ids, 3, 42)

	if len(first) != 3 || len(second) != 3 {
		t.Fatalf("Expected 3 sampled ids, got %v and %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Same seed gave different samples: %v vs %v", first, second)
		}
	}

	// Input order must not matter either.
	reordered := SampleExperiments([]string{"e1", "e3", "e7", "e9", "e2", "e5"}, 3, 42)
	for i := range first {
		if first[i] != reordered[i] {
			t.Fatalf("Input order changed the sample: %v vs %v", first, reordered)
		}
	}
}

func TestSampleExperimentsClampsK(t *testing.T) {
	ids := []string{"e1", "e2"}
	if got := SampleExperiments(ids, 10, 1); len(got) != 2 {
		t.Fatalf("Expected k to clamp to the set size, got %v", got)
	}
}
