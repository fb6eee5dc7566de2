package main

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/carbocation/screenrepro/reproreport"
	"github.com/gocarina/gocsv"
)

// writeResults emits one correlation table per processing stage plus a
// summary table. Rows are sorted so output files are byte-identical between
// runs regardless of worker scheduling.
func writeResults(outDir string, report reproreport.Report) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	byStage := make(map[reproreport.Stage][]reproreport.Entry)
	for _, e := range report.Entries {
		byStage[e.Stage] = append(byStage[e.Stage], e)
	}

	for stage, entries := range byStage {
		sort.Slice(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Experiment != b.Experiment {
				return a.Experiment < b.Experiment
			}
			if a.SampleA != b.SampleA {
				return a.SampleA < b.SampleA
			}
			if a.SampleB != b.SampleB {
				return a.SampleB < b.SampleB
			}
			return a.Method < b.Method
		})

		if err := writeCSV(filepath.Join(outDir, "correlations_"+string(stage)+".csv"), &entries); err != nil {
			return err
		}
	}

	summaries := report.Summaries

	return writeCSV(filepath.Join(outDir, "summary.csv"), &summaries)
}

func writeCSV(path string, rows interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(rows, f)
}
