package tabular

import "strings"

// CanonicalField is a normalized column name used across all import sources.
type CanonicalField string

const (
	FieldCampaignName CanonicalField = "Campaign name"
	FieldDescription  CanonicalField = "Description"
	FieldDateStart    CanonicalField = "Date Start"
	FieldDateEnd      CanonicalField = "Date End"
	FieldCountry      CanonicalField = "Country"
	FieldCategory     CanonicalField = "Category_name"
	FieldDemand       CanonicalField = "Demand"
)

// displayOrder is the preferred column order for previews and exports.
var displayOrder = []CanonicalField{
	FieldCampaignName,
	FieldDescription,
	FieldDateStart,
	FieldDateEnd,
	FieldCountry,
	FieldCategory,
	FieldDemand,
}

// requiredFields must all resolve (directly or through an alias) before a
// table is allowed into filtering. Date and name columns are included here
// because the alias table already collapses their source variants onto the
// canonical names.
var requiredFields = []CanonicalField{
	FieldCountry,
	FieldDescription,
	FieldDemand,
	FieldDateStart,
	FieldDateEnd,
	FieldCampaignName,
}

// Record is one row of the canonical table. Date fields stay as raw text
// until the period filter parses them; rows with malformed dates remain in
// the table and simply never match a window. Demand carries the normalized
// value once the demand pass has run, RawDemand the original cell text.
type Record struct {
	CampaignName string
	Description  string
	DateStart    string
	DateEnd      string
	Country      string
	Category     string
	Demand       *float64
	RawDemand    string

	// Columns that do not map to any canonical field, preserved for
	// display and export.
	Extra map[string]string
}

// Field returns the record's value for a canonical field as display text.
func (r *Record) Field(f CanonicalField) string {
	switch f {
	case FieldCampaignName:
		return r.CampaignName
	case FieldDescription:
		return r.Description
	case FieldDateStart:
		return r.DateStart
	case FieldDateEnd:
		return r.DateEnd
	case FieldCountry:
		return r.Country
	case FieldCategory:
		return r.Category
	case FieldDemand:
		return r.RawDemand
	}
	return ""
}

// Table is an ordered sequence of records plus the columns actually present.
// Columns holds canonical names first (display order), then any extra
// source columns in their original order.
type Table struct {
	Columns []string
	Rows    []*Record
}

// Has reports whether a canonical field is present in the table.
func (t *Table) Has(f CanonicalField) bool {
	for _, c := range t.Columns {
		if c == string(f) {
			return true
		}
	}
	return false
}

// Empty reports whether the table carries no rows. An empty table means
// "no data" and is distinct from a table that failed field validation.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Subset returns a new table containing the rows at the given indices, in
// the given order. Indices out of range are skipped. Column set is shared.
func (t *Table) Subset(indices []int) *Table {
	sub := &Table{Columns: t.Columns}
	for _, i := range indices {
		if i < 0 || i >= len(t.Rows) {
			continue
		}
		sub.Rows = append(sub.Rows, t.Rows[i])
	}
	return sub
}

// MissingFieldsError reports the canonical fields that could not be
// resolved from the source headers or any of their aliases.
type MissingFieldsError struct {
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}
