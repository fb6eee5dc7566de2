// Package reproreport aggregates per-experiment correlation results into
// global summary statistics and reproducible example selections.
package reproreport

import (
	"math/rand"
	"sort"

	"github.com/carbocation/screenrepro/paircorr"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Stage names the processing stage a coefficient was computed at.
type Stage string

const (
	StageRaw        Stage = "raw"
	StageNormalized Stage = "normalized"
	StageFoldChange Stage = "foldchange"
)

// Entry is one correlation coefficient tagged with the experiment and stage
// it came from. This is the row format of the output tables.
type Entry struct {
	Experiment  string          `csv:"experiment"`
	Stage       Stage           `csv:"stage"`
	SampleA     string          `csv:"sample_a"`
	SampleB     string          `csv:"sample_b"`
	Method      paircorr.Method `csv:"method"`
	Coefficient float64         `csv:"coefficient"`
}

// Summary is the mean and median coefficient for one stage and method over
// all pairs from all experiments.
type Summary struct {
	Stage  Stage           `csv:"stage"`
	Method paircorr.Method `csv:"method"`
	N      int             `csv:"n"`
	Mean   float64         `csv:"mean"`
	Median float64         `csv:"median"`
}

// Report is the immutable aggregate over the full batch.
type Report struct {
	Entries   []Entry
	Summaries []Summary
}

// Tag converts one experiment's correlation results into report entries.
func Tag(experiment string, stage Stage, results []paircorr.Result) []Entry {
	out := make([]Entry, 0, len(results))
	for _, res := range results {
		out = append(out, Entry{
			Experiment:  experiment,
			Stage:       stage,
			SampleA:     res.A,
			SampleB:     res.B,
			Method:      res.Method,
			Coefficient: res.Coefficient,
		})
	}

	return out
}

// Assemble computes per-stage, per-method summaries over all entries. The
// result does not depend on entry order, so parallel producers need no
// coordination beyond concatenation.
func Assemble(entries []Entry) Report {
	type group struct {
		Stage  Stage
		Method paircorr.Method
	}

	coeffs := make(map[group][]float64)
	for _, e := range entries {
		key := group{Stage: e.Stage, Method: e.Method}
		coeffs[key] = append(coeffs[key], e.Coefficient)
	}

	summaries := make([]Summary, 0, len(coeffs))
	for key, vals := range coeffs {
		// Summation order affects the low bits of the mean; fixing the
		// order makes the aggregate bit-identical however the entries
		// arrive.
		sort.Float64s(vals)

		median, err := stats.Median(vals)
		if err != nil {
			continue
		}

		summaries = append(summaries, Summary{
			Stage:  key.Stage,
			Method: key.Method,
			N:      len(vals),
			Mean:   stat.Mean(vals, nil),
			Median: median,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Stage != summaries[j].Stage {
			return summaries[i].Stage < summaries[j].Stage
		}
		return summaries[i].Method < summaries[j].Method
	})

	return Report{Entries: entries, Summaries: summaries}
}

// SampleExperiments draws k experiment identifiers without replacement using
// an explicitly seeded generator. Sorting first makes the draw a function of
// the set alone, so the same seed and set always select the same experiments
// in the same order regardless of map iteration or parallelism.
func SampleExperiments(ids []string, k int, seed int64) []string {
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)

	if k > len(sorted) {
		k = len(sorted)
	}

	rng := rand.New(rand.NewSource(seed))

	out := make([]string, 0, k)
	for _, i := range rng.Perm(len(sorted))[:k] {
		out = append(out, sorted[i])
	}

	return out
}
