package tabular

import (
	"errors"
	"reflect"
	"testing"
)

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Country", "Country"},
		{"surrounding spaces", "  Demand ", "Demand"},
		{"trailing non-breaking space", "Start ", "Start"},
		{"narrow no-break space", " End", "End"},
		{"figure space", "Name ", "Name"},
		{"tabs and newlines", "\tCategory\n", "Category"},
		{"interior space preserved", "Date Start", "Date Start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanHeader(tt.input); got != tt.want {
				t.Errorf("CleanHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("Summer Sale "); got != "Summer Sale" {
		t.Errorf("NormalizeText = %q, want %q", got, "Summer Sale")
	}
}

func TestReconcileAliases(t *testing.T) {
	grid := [][]string{
		{"Start", "End", "Name", "Category", "Description", "Country", "Demand"},
		{"01/01/2024", "31/01/2024", "Campaign A", "Electronics", "Winter sale", "PL", "54332"},
	}
	tbl, err := Reconcile(grid)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(tbl.Rows))
	}

	r := tbl.Rows[0]
	if r.DateStart != "01/01/2024" || r.DateEnd != "31/01/2024" {
		t.Errorf("dates = %q / %q", r.DateStart, r.DateEnd)
	}
	if r.CampaignName != "Campaign A" || r.Category != "Electronics" {
		t.Errorf("name/category = %q / %q", r.CampaignName, r.Category)
	}
	if r.RawDemand != "54332" {
		t.Errorf("raw demand = %q", r.RawDemand)
	}

	wantCols := []string{
		"Campaign name", "Description", "Date Start", "Date End",
		"Country", "Category_name", "Demand",
	}
	if !reflect.DeepEqual(tbl.Columns, wantCols) {
		t.Errorf("columns = %v, want %v", tbl.Columns, wantCols)
	}
}

func TestReconcileCanonicalWinsOverAlias(t *testing.T) {
	// When both the canonical column and an alias are present, the alias
	// column must not displace the canonical one.
	grid := [][]string{
		{"Date Start", "Start", "Date End", "Campaign name", "Description", "Country", "Demand"},
		{"2024-01-01", "1999-01-01", "2024-01-31", "A", "desc", "PL", "1"},
	}
	tbl, err := Reconcile(grid)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if got := tbl.Rows[0].DateStart; got != "2024-01-01" {
		t.Errorf("DateStart = %q, want canonical column value", got)
	}
	// The losing alias column survives as an extra column.
	if got := tbl.Rows[0].Extra["Start"]; got != "1999-01-01" {
		t.Errorf("Extra[Start] = %q, want 1999-01-01", got)
	}
}

func TestReconcileMissingFields(t *testing.T) {
	grid := [][]string{
		{"Name", "Start", "End"},
		{"Campaign A", "01/01/2024", "31/01/2024"},
	}
	_, err := Reconcile(grid)

	var mfe *MissingFieldsError
	if !errors.As(err, &mfe) {
		t.Fatalf("got %v, want MissingFieldsError", err)
	}
	want := []string{"Country", "Description", "Demand"}
	if !reflect.DeepEqual(mfe.Missing, want) {
		t.Errorf("missing = %v, want %v", mfe.Missing, want)
	}
}

func TestReconcileEmptyGrid(t *testing.T) {
	tbl, err := Reconcile(nil)
	if err != nil {
		t.Fatalf("Reconcile(nil) error: %v", err)
	}
	if !tbl.Empty() {
		t.Errorf("expected empty table")
	}
}

func TestReconcileDirtyHeadersAndExtras(t *testing.T) {
	grid := [][]string{
		{"Start ", " End", "Name", "Description", "Country", "Demand", "Budget", ""},
		{"01/01/2024", "31/01/2024", "A", "desc", "PL", "100", "5000", "junk"},
		{"01/02/2024", "28/02/2024", "B", "desc", "PL", "200", "", ""},
	}
	tbl, err := Reconcile(grid)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}

	if tbl.Rows[0].Extra["Budget"] != "5000" {
		t.Errorf("Extra[Budget] = %q, want 5000", tbl.Rows[0].Extra["Budget"])
	}
	// Empty extra cells and nameless columns are not kept.
	if _, ok := tbl.Rows[1].Extra["Budget"]; ok {
		t.Errorf("empty extra cell should be absent")
	}
	for _, c := range tbl.Columns {
		if c == "" {
			t.Errorf("nameless column leaked into Columns: %v", tbl.Columns)
		}
	}
}

func TestSubset(t *testing.T) {
	tbl := &Table{
		Columns: []string{"Campaign name"},
		Rows: []*Record{
			{CampaignName: "A"}, {CampaignName: "B"}, {CampaignName: "C"},
		},
	}
	sub := tbl.Subset([]int{2, 0, 99, -1})
	if len(sub.Rows) != 2 || sub.Rows[0].CampaignName != "C" || sub.Rows[1].CampaignName != "A" {
		t.Errorf("Subset rows wrong: %+v", sub.Rows)
	}
}
