// Package foldchange derives per-guide log2 fold changes between each
// final-timepoint replicate and the baseline initial-timepoint replicate of
// one experiment.
package foldchange

import (
	"errors"
	"math"

	"github.com/carbocation/screenrepro/screens"
	"github.com/carbocation/screenrepro/tmm"
)

// DefaultLowCountCutoff is the baseline read count below which a guide is
// considered too poorly measured to contribute to fold changes.
const DefaultLowCountCutoff = 30

// ErrInsufficientReplicates indicates that fewer than 2 usable sample
// columns remained, so fold change (and downstream correlation) is undefined
// for the experiment.
var ErrInsufficientReplicates = errors.New("foldchange: fewer than 2 usable samples")

// Compute returns the guide × final-replicate matrix of log2 fold changes
// for one experiment. Only the first initial replicate is used as the
// baseline; additional initial replicates are ignored rather than averaged.
// Guides whose baseline count is missing or below lowCount are filtered out
// before normalization.
func Compute(t *screens.ExperimentTable, lowCount int64) (screens.CountMatrix, error) {
	if len(t.InitialLabels) == 0 {
		return screens.CountMatrix{}, ErrInsufficientReplicates
	}
	baseline := t.InitialLabels[0]

	labels := append([]string{baseline}, t.FinalLabels...)
	m := filterLowBaseline(t.Matrix(labels), float64(lowCount))

	m = tmm.DropEmptyColumns(m)
	if len(m.Labels) < 2 || m.Labels[0] != baseline {
		return screens.CountMatrix{}, ErrInsufficientReplicates
	}

	norm, err := tmm.Normalize(m, true)
	if err != nil {
		return screens.CountMatrix{}, err
	}

	out := screens.CountMatrix{
		Labels: append([]string{}, norm.Labels[1:]...),
		Cols:   make([][]float64, len(norm.Cols)-1),
	}
	for j := 1; j < len(norm.Cols); j++ {
		col := make([]float64, len(norm.Cols[j]))
		for i, v := range norm.Cols[j] {
			col[i] = v - norm.Cols[0][i]
		}
		out.Cols[j-1] = col
	}

	return out, nil
}

// filterLowBaseline drops rows whose first-column value is missing or below
// cutoff.
func filterLowBaseline(m screens.CountMatrix, cutoff float64) screens.CountMatrix {
	if len(m.Cols) == 0 {
		return m
	}

	var keep []int
	for i, v := range m.Cols[0] {
		if math.IsNaN(v) || v < cutoff {
			continue
		}
		keep = append(keep, i)
	}

	out := screens.CountMatrix{
		Labels: append([]string{}, m.Labels...),
		Cols:   make([][]float64, len(m.Cols)),
	}
	for j, col := range m.Cols {
		filtered := make([]float64, 0, len(keep))
		for _, i := range keep {
			filtered = append(filtered, col[i])
		}
		out.Cols[j] = filtered
	}

	return out
}
