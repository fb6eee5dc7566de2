package screens

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/carbocation/screenrepro"
	"github.com/gocarina/gocsv"
)

// Load reads the full database export from r into typed records. The
// delimiter is detected from the data, since exports circulate in both comma
// and tab flavors. A structurally unreadable export is an error; individual
// malformed packed fields are tolerated at parse time and filtered during
// grouping.
func Load(r io.Reader) ([]Record, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadBytes(raw)
}

// LoadBytes is Load over an in-memory export.
func LoadBytes(raw []byte) ([]Record, error) {
	sample := raw
	if len(sample) > 8192 {
		sample = sample[:8192]
	}
	comma := screenrepro.DetermineDelimiter(sample)

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		rdr := csv.NewReader(in)
		rdr.Comma = comma
		rdr.LazyQuotes = true
		return rdr
	})

	records := []*Record{}
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing screen export: %w", err)
	}

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, *rec)
	}

	return out, nil
}
