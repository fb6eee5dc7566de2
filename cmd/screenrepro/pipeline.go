package main

import (
	"log"
	"sync"

	"github.com/carbocation/screenrepro/foldchange"
	"github.com/carbocation/screenrepro/paircorr"
	"github.com/carbocation/screenrepro/reproreport"
	"github.com/carbocation/screenrepro/screens"
	"github.com/carbocation/screenrepro/tmm"
)

type experimentResult struct {
	id         string
	entries    []reproreport.Entry
	foldChange *screens.CountMatrix
	skipped    bool
}

// processExperiments runs the three analysis paths over every experiment on
// a bounded worker pool. Experiments are independent and the aggregate is
// order-independent, so no coordination beyond collection is needed.
// Fold-change matrices are retained only for the ids in keep, which is where
// the scatter plots come from.
func processExperiments(tables map[string]*screens.ExperimentTable, keep map[string]struct{}, workers int, lowCount int64) ([]reproreport.Entry, map[string]screens.CountMatrix, int) {
	if workers < 1 {
		workers = 1
	}

	concurrencyLimit := make(chan struct{}, workers)
	results := make(chan experimentResult)
	var pool sync.WaitGroup

	go func() {
		for id, table := range tables {
			pool.Add(1)
			concurrencyLimit <- struct{}{}

			go func(id string, table *screens.ExperimentTable) {
				defer pool.Done()

				_, retainFoldChange := keep[id]
				results <- processOne(id, table, lowCount, retainFoldChange)

				<-concurrencyLimit
			}(id, table)
		}

		pool.Wait()
		close(results)
	}()

	var entries []reproreport.Entry
	scatters := make(map[string]screens.CountMatrix)
	skipped := 0
	for res := range results {
		entries = append(entries, res.entries...)
		if res.foldChange != nil {
			scatters[res.id] = *res.foldChange
		}
		if res.skipped {
			skipped++
		}
	}

	return entries, scatters, skipped
}

// processOne computes all three correlation sets for a single experiment.
// Failures stay local: a failed path marks the experiment skipped for that
// path and processing continues.
func processOne(id string, table *screens.ExperimentTable, lowCount int64, retainFoldChange bool) experimentResult {
	res := experimentResult{id: id}

	raw := tmm.DropEmptyColumns(table.Matrix(table.Labels()))
	res.entries = append(res.entries,
		reproreport.Tag(id, reproreport.StageRaw, paircorr.Pairwise(raw))...)

	if norm, err := tmm.Normalize(raw, false); err != nil {
		log.Println("Skipping normalized-count correlation for", id, "-", err)
		res.skipped = true
	} else {
		res.entries = append(res.entries,
			reproreport.Tag(id, reproreport.StageNormalized, paircorr.Pairwise(norm))...)
	}

	if fc, err := foldchange.Compute(table, lowCount); err != nil {
		log.Println("Skipping fold-change correlation for", id, "-", err)
		res.skipped = true
	} else {
		res.entries = append(res.entries,
			reproreport.Tag(id, reproreport.StageFoldChange, paircorr.Pairwise(fc))...)
		if retainFoldChange {
			res.foldChange = &fc
		}
	}

	return res
}
