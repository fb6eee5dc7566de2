// Package tmm computes trimmed-mean-of-M-values scale factors to make read
// counts comparable between sequencing samples with different library sizes
// and compositions.
package tmm

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/carbocation/screenrepro/screens"
	"github.com/montanaflynn/stats"
)

// Two-sided trim fractions applied to the log-ratio (M) and average
// log-count (A) distributions before averaging.
const (
	logRatioTrim = 0.3
	logSumTrim   = 0.05
)

// ErrNoReference indicates that a sample shares no nonzero guides with the
// reference sample, so no scale factor can be computed.
var ErrNoReference = errors.New("tmm: no nonzero guides shared with the reference sample")

// DropEmptyColumns removes columns whose every entry is NaN. Scale factors
// are undefined for a column with no observations, so this runs before
// Factors, and the retained label set is what fold-change and correlation
// stages see.
func DropEmptyColumns(m screens.CountMatrix) screens.CountMatrix {
	var out screens.CountMatrix

	for j, col := range m.Cols {
		empty := true
		for _, v := range col {
			if !math.IsNaN(v) {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		out.Labels = append(out.Labels, m.Labels[j])
		out.Cols = append(out.Cols, col)
	}

	return out
}

// Factors computes one scale factor per sample. The reference sample is the
// one whose upper-quartile count fraction sits closest to the mean of those
// fractions. Each sample's log2 factor is the mean of its guide-wise
// log-ratios against the reference, after trimming the extremes of both the
// log-ratio and average-log-count distributions. Factors are rescaled so
// their geometric mean is 1.
func Factors(m screens.CountMatrix) ([]float64, error) {
	k := len(m.Cols)
	if k == 0 {
		return nil, fmt.Errorf("tmm: no samples to normalize")
	}

	lib := make([]float64, k)
	quartile := make([]float64, k)
	for j, col := range m.Cols {
		clean := observed(col)
		if len(clean) == 0 {
			return nil, fmt.Errorf("tmm: column %s: %w", m.Labels[j], ErrNoReference)
		}

		for _, v := range clean {
			lib[j] += v
		}
		if lib[j] == 0 {
			return nil, fmt.Errorf("tmm: column %s has no nonzero counts: %w", m.Labels[j], ErrNoReference)
		}

		q, err := stats.Percentile(clean, 75)
		if err != nil {
			return nil, fmt.Errorf("tmm: column %s: %v", m.Labels[j], err)
		}
		quartile[j] = q / lib[j]
	}

	meanQuartile := 0.0
	for _, q := range quartile {
		meanQuartile += q
	}
	meanQuartile /= float64(k)

	ref := 0
	for j := range quartile {
		if math.Abs(quartile[j]-meanQuartile) < math.Abs(quartile[ref]-meanQuartile) {
			ref = j
		}
	}

	logFactors := make([]float64, k)
	for j := range m.Cols {
		if j == ref {
			continue
		}

		f, err := trimmedLogRatio(m.Cols[j], lib[j], m.Cols[ref], lib[ref])
		if err != nil {
			return nil, fmt.Errorf("tmm: column %s vs reference %s: %w", m.Labels[j], m.Labels[ref], err)
		}
		logFactors[j] = f
	}

	// Rescale so the geometric mean of the factors is 1, which keeps the
	// overall count scale anchored to the experiment rather than to the
	// arbitrary choice of reference.
	meanLog := 0.0
	for _, f := range logFactors {
		meanLog += f
	}
	meanLog /= float64(k)

	factors := make([]float64, k)
	for j := range logFactors {
		factors[j] = math.Exp2(logFactors[j] - meanLog)
	}

	return factors, nil
}

// Normalize scales the matrix to a common effective library size. With
// log2Scale, values are returned as log2 of the scaled count plus a 0.5
// pseudocount; otherwise they stay on the raw count scale. Missing entries
// stay NaN; everything else is finite.
func Normalize(m screens.CountMatrix, log2Scale bool) (screens.CountMatrix, error) {
	factors, err := Factors(m)
	if err != nil {
		return screens.CountMatrix{}, err
	}

	lib := make([]float64, len(m.Cols))
	for j, col := range m.Cols {
		for _, v := range observed(col) {
			lib[j] += v
		}
	}

	// Geometric mean of the effective library sizes, used as the common
	// scale so normalized values remain comparable to raw counts.
	meanLogLib := 0.0
	for j := range lib {
		meanLogLib += math.Log(lib[j] * factors[j])
	}
	targetLib := math.Exp(meanLogLib / float64(len(lib)))

	out := screens.CountMatrix{
		Labels: append([]string{}, m.Labels...),
		Cols:   make([][]float64, len(m.Cols)),
	}
	for j, col := range m.Cols {
		scale := targetLib / (lib[j] * factors[j])
		scaled := make([]float64, len(col))
		for i, v := range col {
			if math.IsNaN(v) {
				scaled[i] = math.NaN()
				continue
			}
			scaled[i] = v * scale
			if log2Scale {
				scaled[i] = math.Log2(scaled[i] + 0.5)
			}
		}
		out.Cols[j] = scaled
	}

	return out, nil
}

// trimmedLogRatio computes one sample's log2 scale factor against the
// reference: the mean of the guide-wise M-values that survive rank-trimming
// on both the M and A distributions.
func trimmedLogRatio(obs []float64, libObs float64, ref []float64, libRef float64) (float64, error) {
	var mvals, avals []float64

	for i := range obs {
		o, r := obs[i], ref[i]
		if math.IsNaN(o) || math.IsNaN(r) || o <= 0 || r <= 0 {
			continue
		}

		po, pr := o/libObs, r/libRef
		mvals = append(mvals, math.Log2(po/pr))
		avals = append(avals, 0.5*math.Log2(po*pr))
	}

	if len(mvals) == 0 {
		return 0, ErrNoReference
	}

	kept := doubleTrim(mvals, avals)
	if len(kept) == 0 {
		// Trimming can empty very small overlap sets; fall back to the
		// untrimmed mean rather than failing the sample.
		kept = mvals
	}

	sum := 0.0
	for _, v := range kept {
		sum += v
	}

	return sum / float64(len(kept)), nil
}

// doubleTrim returns the M-values whose rank falls inside the central band
// of both the M and A distributions.
func doubleTrim(mvals, avals []float64) []float64 {
	n := len(mvals)

	loM := int(math.Floor(float64(n) * logRatioTrim))
	hiM := n - loM
	loA := int(math.Floor(float64(n) * logSumTrim))
	hiA := n - loA

	rankM := ranks(mvals)
	rankA := ranks(avals)

	var kept []float64
	for i := range mvals {
		if rankM[i] < loM || rankM[i] >= hiM {
			continue
		}
		if rankA[i] < loA || rankA[i] >= hiA {
			continue
		}
		kept = append(kept, mvals[i])
	}

	return kept
}

// ranks maps each element to its 0-based position in the sorted order.
func ranks(vals []float64) []int {
	order := make([]int, len(vals))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return vals[order[a]] < vals[order[b]]
	})

	out := make([]int, len(vals))
	for rank, i := range order {
		out[i] = rank
	}

	return out
}

// observed returns the non-missing values of a column.
func observed(col []float64) []float64 {
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}
