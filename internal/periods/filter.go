// Package periods selects campaign records for the two comparison windows
// and blends their demand averages into a single forward estimate.
package periods

import (
	"strings"
	"time"

	"github.com/ignite/campaign-estimator/internal/tabular"
)

// MatchMode selects how a record's date range is compared against the
// criteria window. Earlier revisions of this logic required the campaign to
// be fully contained in the window; later ones accepted any overlap. Both
// survive as configuration.
type MatchMode string

const (
	// ModeOverlap matches campaigns that intersect the window at all.
	ModeOverlap MatchMode = "overlap"
	// ModeContainment matches only campaigns fully inside the window.
	ModeContainment MatchMode = "containment"
)

// CategoryAll is the sentinel meaning "do not filter by category".
const CategoryAll = "All"

// minSearchLen is the minimum effective length of the free-text term;
// shorter terms are treated as absent.
const minSearchLen = 3

// Criteria is the value object for one filter invocation.
type Criteria struct {
	Country  string
	Category string
	Search   string
	From     time.Time
	To       time.Time
	Mode     MatchMode
}

// Matches returns the indices of the table rows satisfying the criteria,
// in input order. Rows whose dates fail to parse never match; they are not
// an error. Pure function of its inputs.
func Matches(t *tabular.Table, c Criteria) []int {
	mode := c.Mode
	if mode == "" {
		mode = ModeOverlap
	}

	category := strings.TrimSpace(c.Category)
	search := strings.TrimSpace(c.Search)
	if len([]rune(search)) < minSearchLen {
		search = ""
	}
	search = strings.ToLower(search)

	var out []int
	for i, r := range t.Rows {
		if r.Country != c.Country {
			continue
		}
		if category != "" && category != CategoryAll {
			if !strings.EqualFold(strings.TrimSpace(r.Category), category) {
				continue
			}
		}
		if search != "" {
			desc := strings.ToLower(tabular.NormalizeText(r.Description))
			name := strings.ToLower(tabular.NormalizeText(r.CampaignName))
			if !strings.Contains(desc, search) && !strings.Contains(name, search) {
				continue
			}
		}

		start, ok := ParseDate(r.DateStart)
		if !ok {
			continue
		}
		end, ok := ParseDate(r.DateEnd)
		if !ok {
			continue
		}

		switch mode {
		case ModeContainment:
			if start.Before(c.From) || end.After(c.To) {
				continue
			}
		default:
			// Interval overlap: the campaign need not be contained in
			// the window, it only has to touch it.
			if end.Before(c.From) || start.After(c.To) {
				continue
			}
		}

		out = append(out, i)
	}
	return out
}

// Filter returns the sub-table of rows matching the criteria, row order
// preserved.
func Filter(t *tabular.Table, c Criteria) *tabular.Table {
	return t.Subset(Matches(t, c))
}

// dateLayouts are tried in order. ISO first because it is unambiguous,
// then day-first forms, matching how the source files write dates.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate parses a record date using the day-first convention when the
// form is ambiguous. Reports false for anything unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = tabular.NormalizeText(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
