package tabular

import "strings"

// columnAliases maps source header names to canonical fields. When a
// canonical column is absent but an alias column is present, the alias
// column is adopted under the canonical name. An existing canonical column
// is never overwritten by an alias.
var columnAliases = map[string]CanonicalField{
	"Start":       FieldDateStart,
	"End":         FieldDateEnd,
	"Name":        FieldCampaignName,
	"Category":    FieldCategory,
	"Description": FieldDescription,
	"Country":     FieldCountry,
	"Demand":      FieldDemand,
}

// invisibleSpace matches the space code points that spreadsheet exports
// smuggle into headers and cells: NBSP, narrow no-break space, figure space.
func invisibleSpace(r rune) bool {
	switch r {
	case '\u00a0', '\u202f', '\u2007':
		return true
	}
	return false
}

// CleanHeader strips leading/trailing whitespace and invisible space code
// points from a header cell.
func CleanHeader(h string) string {
	h = strings.TrimFunc(h, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\r' || r == '\n' || invisibleSpace(r)
	})
	return h
}

// NormalizeText collapses invisible spaces to ordinary ones and trims the
// result. Used on free-text fields before substring matching so trailing
// non-breaking spaces do not block a match.
func NormalizeText(s string) string {
	s = strings.Map(func(r rune) rune {
		if invisibleSpace(r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// columnLayout is the resolved mapping from grid column indices to fields.
type columnLayout struct {
	fieldIdx map[CanonicalField]int // canonical field -> column index
	extra    []int                  // indices of unmapped columns
}

// mapColumns resolves a cleaned header row against canonical names first,
// then the alias table. First claim wins; aliases never displace a column
// that already carries the canonical name.
func mapColumns(header []string) *columnLayout {
	l := &columnLayout{
		fieldIdx: make(map[CanonicalField]int, len(header)),
	}

	canonical := map[string]CanonicalField{}
	for _, f := range displayOrder {
		canonical[string(f)] = f
	}

	claimed := make([]bool, len(header))
	for i, h := range header {
		if f, ok := canonical[h]; ok {
			if _, taken := l.fieldIdx[f]; !taken {
				l.fieldIdx[f] = i
				claimed[i] = true
			}
		}
	}
	for i, h := range header {
		if claimed[i] {
			continue
		}
		if f, ok := columnAliases[h]; ok {
			if _, taken := l.fieldIdx[f]; !taken {
				l.fieldIdx[f] = i
				claimed[i] = true
			}
		}
	}
	for i := range header {
		if !claimed[i] {
			l.extra = append(l.extra, i)
		}
	}
	return l
}

// Reconcile maps a raw grid (header row first) onto the canonical table
// shape. A grid with no rows at all yields an empty table, not an error;
// a grid whose header cannot resolve every required field yields a
// MissingFieldsError naming exactly the unresolved canonical fields.
func Reconcile(grid [][]string) (*Table, error) {
	if len(grid) == 0 {
		return &Table{}, nil
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = CleanHeader(h)
	}
	layout := mapColumns(header)

	var missing []string
	for _, f := range requiredFields {
		if _, ok := layout.fieldIdx[f]; !ok {
			missing = append(missing, string(f))
		}
	}
	if len(missing) > 0 {
		return nil, &MissingFieldsError{Missing: missing}
	}

	t := &Table{}
	for _, f := range displayOrder {
		if _, ok := layout.fieldIdx[f]; ok {
			t.Columns = append(t.Columns, string(f))
		}
	}
	for _, i := range layout.extra {
		if header[i] != "" {
			t.Columns = append(t.Columns, header[i])
		}
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	for _, row := range grid[1:] {
		rec := &Record{}
		for f, i := range layout.fieldIdx {
			v := cell(row, i)
			switch f {
			case FieldCampaignName:
				rec.CampaignName = v
			case FieldDescription:
				rec.Description = v
			case FieldDateStart:
				rec.DateStart = v
			case FieldDateEnd:
				rec.DateEnd = v
			case FieldCountry:
				rec.Country = v
			case FieldCategory:
				rec.Category = v
			case FieldDemand:
				rec.RawDemand = v
			}
		}
		for _, i := range layout.extra {
			if header[i] == "" {
				continue
			}
			v := cell(row, i)
			if v == "" {
				continue
			}
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[header[i]] = v
		}
		t.Rows = append(t.Rows, rec)
	}

	return t, nil
}
