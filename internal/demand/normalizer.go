// Package demand converts the heterogeneous Demand column of imported
// campaign tables into clean float values. Source files mix plain numbers,
// currency-formatted strings in several locales, and values corrupted by
// thousands-separator misreads; the normalizer salvages what it can and
// degrades the rest to null, reporting counters instead of per-row errors.
package demand

import (
	"math"
	"strconv"
	"strings"

	"github.com/ignite/campaign-estimator/internal/tabular"
)

// Thresholds configures the two magnitude policies. Suspicious is the bound
// above which a parsed value is treated as a thousands-separator corruption
// and truncated to the column's typical digit length. Ceiling is the coarser
// safety net: anything beyond it on the text path is rejected to null
// outright. Both were hard-coded at different values in earlier revisions
// of this logic, so they are explicit configuration now.
type Thresholds struct {
	Suspicious    float64
	Ceiling       float64
	DefaultDigits int
}

// DefaultThresholds mirrors the most conservative historical policy:
// correct above 1e8, reject above 1e9, assume 5-digit values when the
// column gives no evidence of its own.
func DefaultThresholds() Thresholds {
	return Thresholds{Suspicious: 1e8, Ceiling: 1e9, DefaultDigits: 5}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.Suspicious <= 0 {
		t.Suspicious = d.Suspicious
	}
	if t.Ceiling <= 0 {
		t.Ceiling = d.Ceiling
	}
	if t.DefaultDigits <= 0 {
		t.DefaultDigits = d.DefaultDigits
	}
	return t
}

// Diagnostics tracks the outcome of one normalization pass. Created fresh
// per call, never persisted.
type Diagnostics struct {
	Total      int `json:"total"`
	Parsed     int `json:"parsed"`
	Missing    int `json:"missing"`
	Suspicious int `json:"suspicious"`
	Corrected  int `json:"corrected"`
}

// NormalizeTable runs the demand pass over a reconciled table's Demand
// column, setting each record's Demand from its raw cell text. Re-running
// it over its own output is a no-op for values that already normalized
// cleanly.
func NormalizeTable(t *tabular.Table, th Thresholds) Diagnostics {
	values := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		values[i] = r.RawDemand
	}
	out, diag := Normalize(values, th)
	for i, r := range t.Rows {
		r.Demand = out[i]
	}
	return diag
}

// parsed is the intermediate state of one value between the per-value parse
// and the column-level outlier pass.
type parsed struct {
	val     *float64
	numeric bool // input was already a number; skips all heuristics
}

// Normalize converts a column of arbitrary values (numbers, formatted
// currency strings, null-like markers) into floats or nil, then runs the
// column-level outlier correction. The output slice is index-aligned with
// the input. Idempotent on already-clean float columns.
func Normalize(values []any, t Thresholds) ([]*float64, Diagnostics) {
	t = t.withDefaults()
	diag := Diagnostics{Total: len(values)}

	col := make([]parsed, len(values))
	for i, v := range values {
		col[i] = parseValue(v, t.Ceiling)
		if col[i].val != nil {
			diag.Parsed++
		} else {
			diag.Missing++
		}
	}

	correctOutliers(col, t, &diag)

	out := make([]*float64, len(col))
	for i, p := range col {
		out[i] = p.val
	}
	return out, diag
}

// parseValue handles one value. Already-numeric inputs (and not booleans)
// pass through as their float equivalent and are exempt from every
// magnitude heuristic. Everything else is treated as text.
func parseValue(v any, ceiling float64) parsed {
	switch n := v.(type) {
	case nil:
		return parsed{}
	case float64:
		return parsed{val: &n, numeric: true}
	case float32:
		f := float64(n)
		return parsed{val: &f, numeric: true}
	case int:
		f := float64(n)
		return parsed{val: &f, numeric: true}
	case int64:
		f := float64(n)
		return parsed{val: &f, numeric: true}
	case string:
		return parseText(n, ceiling)
	default:
		// Booleans and anything else unrecognized degrade to null.
		return parsed{}
	}
}

// parseText cleans and parses a textual demand value.
func parseText(s string, ceiling float64) parsed {
	s = strings.TrimSpace(s)
	if s == "" {
		return parsed{}
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.', r == '-':
			b.WriteRune(r)
		}
		// Spaces (ordinary, non-breaking, narrow no-break), currency
		// symbols and any other noise are dropped.
	}
	s = b.String()

	// A single comma with no period is a European decimal separator.
	// Both separators present, or two commas, stays ambiguous and is
	// parsed literally (which usually fails, and that is fine).
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	switch s {
	case "", ".", ",", "-":
		return parsed{}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return parsed{}
	}
	if math.Abs(f) > ceiling {
		// Certainly invalid, beyond what truncation could salvage.
		return parsed{}
	}
	return parsed{val: &f}
}
