package screens

import (
	"strings"

	"gopkg.in/guregu/null.v3"
)

// viabilityMatch is the case-insensitive substring identifying
// viability/dropout screens in the export's condition labels.
const viabilityMatch = "viab"

// MinFinalReplicates is the smallest number of final-timepoint replicate
// columns an experiment must have to permit pairwise correlation.
const MinFinalReplicates = 2

// Group partitions the observation set into per-experiment tables, applying
// the inclusion filters: records with no final-timepoint data (the explicit
// empty-list marker) are dropped, only viability/dropout conditions are
// retained, the known-invalid source-study sentinel is excluded, and
// experiments with fewer than 2 final replicate columns are excluded
// entirely. An experiment with no qualifying rows is simply absent from the
// result.
func Group(records []Record) map[string]*ExperimentTable {
	grouped := make(map[string][]Record)
	for _, rec := range records {
		if rec.RCFinal.IsEmptyMarker() {
			continue
		}
		if !strings.Contains(strings.ToLower(rec.Condition), viabilityMatch) {
			continue
		}
		if rec.PubmedID == InvalidStudyID {
			continue
		}

		key := rec.ExperimentID().String()
		grouped[key] = append(grouped[key], rec)
	}

	out := make(map[string]*ExperimentTable, len(grouped))
	for key, recs := range grouped {
		table := disentangle(recs)
		if table == nil || len(table.FinalLabels) < MinFinalReplicates {
			continue
		}
		out[key] = table
	}

	return out
}

// disentangle splits the packed count fields of one experiment's rows into
// position-ordered replicate columns. The replicate counts n and m are fixed
// by the first row; later rows whose token counts disagree are dropped
// rather than allowed to misalign the columns.
func disentangle(recs []Record) *ExperimentTable {
	if len(recs) == 0 {
		return nil
	}

	nInitial := len(recs[0].RCInitial)
	nFinal := len(recs[0].RCFinal)

	table := ExperimentTable{
		ID:      recs[0].ExperimentID(),
		Columns: make(map[string][]null.Int, nInitial+nFinal),
	}
	for i := 1; i <= nInitial; i++ {
		table.InitialLabels = append(table.InitialLabels, InitialLabel(i))
	}
	for i := 1; i <= nFinal; i++ {
		table.FinalLabels = append(table.FinalLabels, FinalLabel(i))
	}

	for _, rec := range recs {
		if len(rec.RCInitial) != nInitial || len(rec.RCFinal) != nFinal {
			continue
		}

		table.Guides = append(table.Guides, rec.GuideID())
		for i, v := range rec.RCInitial {
			label := table.InitialLabels[i]
			table.Columns[label] = append(table.Columns[label], v)
		}
		for i, v := range rec.RCFinal {
			label := table.FinalLabels[i]
			table.Columns[label] = append(table.Columns[label], v)
		}
	}

	if len(table.Guides) == 0 {
		return nil
	}

	return &table
}
