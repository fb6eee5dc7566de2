package screens

import (
	"testing"
)

const exportSample = `symbol,sequence,pubmed,cellline,condition,rc_initial,rc_final
BRCA1,ACGTACGTACGT,100,HeLa,viability,"[50,60]","[10,12]"
BRCA2,TTTTACGTACGT,100,HeLa,viability,"[55,65]","[]"
`

func TestLoadBytes(t *testing.T) {
	records, err := LoadBytes([]byte(exportSample))
	if err != nil {
		t.Fatalf("Error loading sample export: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Symbol != "BRCA1" || first.CellLine != "HeLa" {
		t.Fatalf("Unexpected first record: %+v", first)
	}
	if len(first.RCInitial) != 2 || first.RCInitial[0].Int64 != 50 {
		t.Fatalf("Unexpected initial counts: %+v", first.RCInitial)
	}
	if len(first.RCFinal) != 2 || first.RCFinal[1].Int64 != 12 {
		t.Fatalf("Unexpected final counts: %+v", first.RCFinal)
	}

	if !records[1].RCFinal.IsEmptyMarker() {
		t.Fatalf("Expected the empty-list marker on the second record, got %+v", records[1].RCFinal)
	}
}

func TestLoadBytesTabDelimited(t *testing.T) {
	sample := "symbol\tsequence\tpubmed\tcellline\tcondition\trc_initial\trc_final\n" +
		"BRCA1\tACGTACGTACGT\t100\tHeLa\tviability\t[50,60]\t[10,12]\n"

	records, err := LoadBytes([]byte(sample))
	if err != nil {
		t.Fatalf("Error loading tab-delimited sample: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if len(records[0].RCFinal) != 2 || records[0].RCFinal[0].Int64 != 10 {
		t.Fatalf("Unexpected final counts: %+v", records[0].RCFinal)
	}
}
