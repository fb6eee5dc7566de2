package screens

import (
	"strconv"
	"strings"

	"gopkg.in/guregu/null.v3"
)

// InvalidStudyID is the placeholder pubmed identifier that the database
// export assigns to submissions whose source study could not be resolved.
// Records carrying it are excluded from grouping.
const InvalidStudyID = "0"

// Record is one observation row of the screen database export: one guide
// sequence observed in one screen, with its read counts at the initial and
// final sequencing timepoints packed into bracket-delimited strings.
type Record struct {
	Symbol    string       `csv:"symbol"`
	Sequence  string       `csv:"sequence"`
	PubmedID  string       `csv:"pubmed"`
	CellLine  string       `csv:"cellline"`
	Condition string       `csv:"condition"`
	RCInitial PackedCounts `csv:"rc_initial"`
	RCFinal   PackedCounts `csv:"rc_final"`
}

// GuideID identifies a guide/target pair within an experiment.
func (r Record) GuideID() string {
	return r.Symbol + ":" + r.Sequence
}

// ExperimentID returns the composite key identifying the screen this
// observation belongs to.
func (r Record) ExperimentID() ExperimentID {
	return ExperimentID{PubmedID: r.PubmedID, CellLine: r.CellLine, Condition: r.Condition}
}

// PackedCounts holds the per-replicate read counts from one packed field.
// Blank or non-numeric tokens are carried as null rather than rejected, so a
// stray bad token never aborts a whole-database load.
type PackedCounts []null.Int

// UnmarshalCSV parses a field like "[10,20,,40]" into one null.Int per
// replicate slot. The explicit empty-list marker "[]" (and a fully blank
// field) parses to zero slots.
func (p *PackedCounts) UnmarshalCSV(field string) error {
	field = strings.TrimSpace(field)
	field = strings.TrimPrefix(field, "[")
	field = strings.TrimSuffix(field, "]")

	if field == "" {
		*p = nil
		return nil
	}

	tokens := strings.Split(field, ",")
	out := make(PackedCounts, 0, len(tokens))
	for _, token := range tokens {
		v, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil {
			out = append(out, null.Int{})
			continue
		}
		out = append(out, null.IntFrom(v))
	}

	*p = out

	return nil
}

// MarshalCSV re-packs the counts into the export's bracketed format, with
// null slots emitted as blank tokens.
func (p PackedCounts) MarshalCSV() (string, error) {
	tokens := make([]string, len(p))
	for i, v := range p {
		if !v.Valid {
			continue
		}
		tokens[i] = strconv.FormatInt(v.Int64, 10)
	}

	return "[" + strings.Join(tokens, ",") + "]", nil
}

// IsEmptyMarker reports whether the field was the export's explicit
// empty-list marker, i.e. no data for this timepoint.
func (p PackedCounts) IsEmptyMarker() bool {
	return len(p) == 0
}
