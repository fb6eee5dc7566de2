// screenrepro measures the reproducibility of pooled dropout screens in a
// public screen database export. For every qualifying experiment it computes
// pairwise replicate correlations at three stages (raw counts, normalized
// counts, log2 fold changes), then aggregates the coefficients across the
// whole database and renders summary histograms plus example scatter plots.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/carbocation/pfx"
	"github.com/carbocation/screenrepro"
	"github.com/carbocation/screenrepro/foldchange"
	"github.com/carbocation/screenrepro/reproreport"
	"github.com/carbocation/screenrepro/screens"
)

func main() {
	var input, outDir string
	var seed, lowCount int64
	var examples, workers int

	flag.StringVar(&input, "input", "", "Screen database export: local path or URL, optionally compressed (.gz, .xz, .zip, .bz2)")
	flag.StringVar(&outDir, "out", ".", "Directory for the output CSVs and plots")
	flag.Int64Var(&seed, "seed", 2017, "Seed for the example-experiment sample")
	flag.IntVar(&examples, "examples", 4, "Number of experiments to sample for scatter plots")
	flag.IntVar(&workers, "workers", runtime.NumCPU(), "Number of experiments to process concurrently")
	flag.Int64Var(&lowCount, "lowcount", foldchange.DefaultLowCountCutoff, "Minimum baseline read count for a guide to enter fold-change analysis")
	flag.Parse()

	if input == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	input = screenrepro.ExpandHome(input)
	outDir = screenrepro.ExpandHome(outDir)

	if err := run(input, outDir, seed, examples, workers, lowCount); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}

func run(input, outDir string, seed int64, examples, workers int, lowCount int64) error {
	f, err := screenrepro.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := screens.Load(f)
	if err != nil {
		return err
	}
	log.Println("Loaded", len(records), "observation records from", input)

	tables := screens.Group(records)
	log.Println("Grouped into", len(tables), "qualifying viability experiments")

	ids := make([]string, 0, len(tables))
	for id := range tables {
		ids = append(ids, id)
	}
	sampled := reproreport.SampleExperiments(ids, examples, seed)
	log.Println("Sampled", len(sampled), "experiments for scatter plots:", sampled)

	keep := make(map[string]struct{}, len(sampled))
	for _, id := range sampled {
		keep[id] = struct{}{}
	}

	entries, scatters, skipped := processExperiments(tables, keep, workers, lowCount)
	if skipped > 0 {
		log.Println("Excluded", skipped, "experiments with insufficient usable replicates or failed normalization")
	}

	report := reproreport.Assemble(entries)
	for _, summary := range report.Summaries {
		log.Printf("%s/%s: n=%d mean=%.4f median=%.4f\n",
			summary.Stage, summary.Method, summary.N, summary.Mean, summary.Median)
	}

	if err := writeResults(outDir, report); err != nil {
		return err
	}

	if err := renderHistograms(outDir, report); err != nil {
		return err
	}

	for _, id := range sampled {
		fc, exists := scatters[id]
		if !exists {
			// The sampled experiment was excluded downstream (e.g.,
			// normalization failed); nothing to plot.
			continue
		}
		if err := renderScatter(outDir, id, fc); err != nil {
			return err
		}
	}

	return nil
}
