package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/screenrepro/reproreport"
	"github.com/carbocation/screenrepro/screens"
	"github.com/wcharczuk/go-chart/v2"
)

const histogramBuckets = 20

// renderHistograms draws one coefficient histogram per stage and method,
// both as a PNG bar chart and as a quick terminal histogram.
func renderHistograms(outDir string, report reproreport.Report) error {
	type group struct {
		Stage  reproreport.Stage
		Method string
	}

	coeffs := make(map[group][]float64)
	for _, e := range report.Entries {
		key := group{Stage: e.Stage, Method: string(e.Method)}
		coeffs[key] = append(coeffs[key], e.Coefficient)
	}

	for key, vals := range coeffs {
		if len(vals) == 0 {
			continue
		}

		hist := histogram.Hist(histogramBuckets, vals)

		fmt.Printf("\n%s %s correlation across %d replicate pairs:\n", key.Stage, key.Method, len(vals))
		if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
			return err
		}

		name := fmt.Sprintf("hist_%s_%s.png", key.Stage, key.Method)
		title := fmt.Sprintf("%s %s correlation (n=%d)", key.Stage, key.Method, len(vals))
		if err := renderBarChart(filepath.Join(outDir, name), title, hist); err != nil {
			return err
		}
	}

	return nil
}

func renderBarChart(filename, title string, hist histogram.Histogram) error {
	bars := make([]chart.Value, 0, len(hist.Buckets))
	for _, bucket := range hist.Buckets {
		bars = append(bars, chart.Value{
			Value: float64(bucket.Count),
			Label: fmt.Sprintf("%.2f", bucket.Min),
		})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    1024,
		Height:   512,
		BarWidth: 30,
		Bars:     bars,
	}

	return renderPNG(filename, func(w *bytes.Buffer) error {
		return graph.Render(chart.PNG, w)
	})
}

// renderScatter plots the first two fold-change replicates of one sampled
// experiment against each other.
func renderScatter(outDir, id string, fc screens.CountMatrix) error {
	if len(fc.Cols) < 2 {
		return nil
	}

	var xs, ys []float64
	for i := range fc.Cols[0] {
		x, y := fc.Cols[0][i], fc.Cols[1][i]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return nil
	}

	graph := chart.Chart{
		Title:  id,
		Width:  512,
		Height: 512,
		XAxis: chart.XAxis{
			Name: fc.Labels[0] + " log2 fold change",
		},
		YAxis: chart.YAxis{
			Name: fc.Labels[1] + " log2 fold change",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    3,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	name := "scatter_" + sanitizeFilename(id) + ".png"

	return renderPNG(filepath.Join(outDir, name), func(w *bytes.Buffer) error {
		return graph.Render(chart.PNG, w)
	})
}

func renderPNG(filename string, render func(*bytes.Buffer) error) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := render(buffer); err != nil {
		return err
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return nil
}

func sanitizeFilename(id string) string {
	id = strings.ReplaceAll(id, "|", "_")
	id = strings.ReplaceAll(id, " ", "-")
	id = strings.ReplaceAll(id, "/", "-")

	return id
}
