package screens

import (
	"fmt"
	"math"

	"gopkg.in/guregu/null.v3"
)

// ExperimentID is the composite key uniquely identifying one screen: the
// source study, the biological sample it was run in, and the condition label.
type ExperimentID struct {
	PubmedID  string
	CellLine  string
	Condition string
}

func (id ExperimentID) String() string {
	return id.PubmedID + "|" + id.CellLine + "|" + id.Condition
}

// ExperimentTable is one screen's observations laid out as guides (rows) ×
// replicate samples (columns). Columns are addressed by label
// (initial_1..initial_n, final_1..final_m), not by position, because the
// replicate count varies between experiments. Tables are built once by Group
// and not mutated afterwards.
type ExperimentTable struct {
	ID            ExperimentID
	Guides        []string
	InitialLabels []string
	FinalLabels   []string
	Columns       map[string][]null.Int
}

// Labels returns all column labels, initial replicates first, in replicate
// order.
func (t *ExperimentTable) Labels() []string {
	out := make([]string, 0, len(t.InitialLabels)+len(t.FinalLabels))
	out = append(out, t.InitialLabels...)
	out = append(out, t.FinalLabels...)

	return out
}

// Matrix extracts the named columns as a float64 count matrix, with missing
// entries represented as NaN.
func (t *ExperimentTable) Matrix(labels []string) CountMatrix {
	out := CountMatrix{
		Labels: append([]string{}, labels...),
		Cols:   make([][]float64, len(labels)),
	}

	for j, label := range labels {
		col := make([]float64, len(t.Guides))
		for i, v := range t.Columns[label] {
			if v.Valid {
				col[i] = float64(v.Int64)
			} else {
				col[i] = math.NaN()
			}
		}
		out.Cols[j] = col
	}

	return out
}

// InitialLabel formats the label for the i'th (1-based) initial replicate.
func InitialLabel(i int) string {
	return fmt.Sprintf("initial_%d", i)
}

// FinalLabel formats the label for the i'th (1-based) final replicate.
func FinalLabel(i int) string {
	return fmt.Sprintf("final_%d", i)
}

// CountMatrix is a column-major guide × sample matrix. NaN marks a missing
// observation. It is the unit handed to normalization, fold change, and
// correlation.
type CountMatrix struct {
	Labels []string
	Cols   [][]float64
}

// NRows returns the number of guides in the matrix.
func (m CountMatrix) NRows() int {
	if len(m.Cols) == 0 {
		return 0
	}

	return len(m.Cols[0])
}
