// Package paircorr computes pairwise correlation coefficients between the
// sample columns of a count matrix.
package paircorr

import (
	"math"
	"sort"

	"github.com/carbocation/screenrepro/screens"
	"gonum.org/v1/gonum/stat"
)

type Method string

const (
	Pearson  Method = "pearson"
	Spearman Method = "spearman"
)

// MinPairedValues is the smallest number of jointly observed values for
// which a coefficient is reported.
const MinPairedValues = 3

// Result is one coefficient for one unordered pair of samples.
type Result struct {
	A           string
	B           string
	Method      Method
	Coefficient float64
}

// Pairwise computes Pearson and Spearman coefficients for every unordered
// distinct pair of columns, excluding missing entries pairwise. Each pair is
// emitted at most once per method. Pairs with too few joint observations or
// a zero-variance column are omitted rather than reported as NaN.
func Pairwise(m screens.CountMatrix) []Result {
	var out []Result

	for i := 0; i < len(m.Cols); i++ {
		for j := i + 1; j < len(m.Cols); j++ {
			x, y := completePairs(m.Cols[i], m.Cols[j])
			if len(x) < MinPairedValues {
				continue
			}

			if r, ok := pearson(x, y); ok {
				out = append(out, Result{A: m.Labels[i], B: m.Labels[j], Method: Pearson, Coefficient: r})
			}
			if r, ok := spearman(x, y); ok {
				out = append(out, Result{A: m.Labels[i], B: m.Labels[j], Method: Spearman, Coefficient: r})
			}
		}
	}

	return out
}

// completePairs returns the values jointly observed in both columns.
func completePairs(a, b []float64) (x, y []float64) {
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}

	return x, y
}

func pearson(x, y []float64) (float64, bool) {
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, false
	}

	return r, true
}

func spearman(x, y []float64) (float64, bool) {
	return pearson(midranks(x), midranks(y))
}

// midranks replaces each value with its 1-based rank, assigning tied values
// the mean of the ranks they span.
func midranks(vals []float64) []float64 {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return vals[order[a]] < vals[order[b]]
	})

	out := make([]float64, len(vals))
	for lo := 0; lo < len(order); {
		hi := lo + 1
		for hi < len(order) && vals[order[hi]] == vals[order[lo]] {
			hi++
		}

		// Ranks lo+1..hi share the midrank.
		mid := float64(lo+1+hi) / 2
		for k := lo; k < hi; k++ {
			out[order[k]] = mid
		}

		lo = hi
	}

	return out
}
