package listing

import (
	"reflect"
	"testing"
)

const sampleTable = `# Summer Internships

| Company | Title | Location | Application |
| ------- | ----- | -------- | ----------- |
| **[Acme](https://acme.io)** | **[Software Engineer Intern](https://x.co/1)** | NYC | [Apply](https://x.co/1) |
| ↳ | **[Data Intern](https://x.co/2)** | Remote | [Apply](https://x.co/2) |
`

func TestParseDocument_ContinuationInheritsCompany(t *testing.T) {
	rows := ParseDocument(sampleTable)

	want := []Row{
		{Company: "Acme", Title: "Software Engineer Intern", Location: "NYC", Link: "https://x.co/1"},
		{Company: "Acme", Title: "Data Intern", Location: "Remote", Link: "https://x.co/2"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ParseDocument() = %+v, want %+v", rows, want)
	}
}

func TestParseDocument_MultipleIndependentTables(t *testing.T) {
	doc := `intro text

| Company | Title | Location | Application |
| Alpha | Engineer Intern | SF | https://a.co/1 |

some prose between tables

| Company | Title | Location | Application |
| ↳ | Orphan Intern | LA | https://b.co/1 |
| Beta | ML Intern | NYC | https://b.co/2 |
`
	rows := ParseDocument(doc)

	// The continuation row at the start of the second table has no company
	// to inherit: carry state must not leak from the first table.
	want := []Row{
		{Company: "Alpha", Title: "Engineer Intern", Location: "SF", Link: "https://a.co/1"},
		{Company: "Beta", Title: "ML Intern", Location: "NYC", Link: "https://b.co/2"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ParseDocument() = %+v, want %+v", rows, want)
	}
}

func TestParseDocument_SkipsUnusableRows(t *testing.T) {
	doc := `| Company | Title | Location | Application |
| --- | --- | --- |
| TooFew | Cells |
| NoLink Co | Engineer Intern | Remote | closed |
| Company | Title | Location | Application |
| Good Co | SWE Intern | Austin, TX | https://g.co/1 |
`
	rows := ParseDocument(doc)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	if rows[0].Company != "Good Co" || rows[0].Link != "https://g.co/1" {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestParseDocument_LinkFallbackToTitleCell(t *testing.T) {
	doc := `| Company | Title | Location | Application |
| Acme | **[SWE Intern](https://t.co/apply)** | Boston | 🔒 |
`
	rows := ParseDocument(doc)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Link != "https://t.co/apply" {
		t.Errorf("Link = %q, want title-cell URL", rows[0].Link)
	}
	if rows[0].Title != "SWE Intern" {
		t.Errorf("Title = %q, want bold-link unwrapped", rows[0].Title)
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Acme Corp", "Acme Corp"},
		{"tags removed", "<b>Acme</b> Corp", "Acme Corp"},
		{"br collapses to comma", "NYC<br>Remote", "NYC, Remote"},
		{"self-closing br", "NYC<br/>Remote", "NYC, Remote"},
		{"entities decoded", "Johnson &amp; Johnson", "Johnson & Johnson"},
		{"surrounding whitespace trimmed", "  Acme  ", "Acme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScanTables_HeaderDetection(t *testing.T) {
	doc := "   | Company | Title | Location | Application |\n| A | B | C | https://a.co |\n"
	tables := ScanTables(doc)
	if len(tables) != 1 {
		t.Fatalf("expected 1 table despite leading whitespace, got %d", len(tables))
	}

	if got := ScanTables("no tables here"); got != nil {
		t.Errorf("expected no tables, got %v", got)
	}
}

func TestParseDocument_Deterministic(t *testing.T) {
	a := ParseDocument(sampleTable)
	b := ParseDocument(sampleTable)
	if !reflect.DeepEqual(a, b) {
		t.Error("same input produced different row sequences")
	}
}
