package demand

import (
	"math"
	"sort"
	"strconv"
)

// correctOutliers is the column-level pass over already-parsed values.
// Values beyond the suspicious threshold are reinterpreted as
// thousands-separator corruptions: the digit string of the integer part is
// truncated to the typical digit length observed among the column's
// normal-range values and reparsed, keeping the original sign. Values that
// arrived as native numbers are exempt.
func correctOutliers(col []parsed, t Thresholds, diag *Diagnostics) {
	typical := typicalDigits(col, t)

	for i := range col {
		p := &col[i]
		if p.val == nil || p.numeric {
			continue
		}
		v := *p.val
		if math.Abs(v) <= t.Suspicious {
			continue
		}

		diag.Suspicious++
		corrected, ok := truncateMagnitude(v, typical)
		if !ok {
			p.val = nil
			diag.Parsed--
			diag.Missing++
			continue
		}
		p.val = &corrected
		diag.Corrected++
	}
}

// typicalDigits returns the median significant-digit count among the
// column's normal-range values, or the configured default when the column
// has none to learn from.
func typicalDigits(col []parsed, t Thresholds) int {
	var counts []int
	for _, p := range col {
		if p.val == nil {
			continue
		}
		if math.Abs(*p.val) < t.Suspicious {
			counts = append(counts, digitCount(*p.val))
		}
	}
	if len(counts) == 0 {
		return t.DefaultDigits
	}
	sort.Ints(counts)
	return counts[len(counts)/2]
}

// digitCount returns the number of digits in the integer part of v.
func digitCount(v float64) int {
	return len(digitString(v))
}

// digitString renders the integer part of |v| as a plain digit string.
func digitString(v float64) string {
	return strconv.FormatFloat(math.Trunc(math.Abs(v)), 'f', -1, 64)
}

// truncateMagnitude cuts the integer digit string of v down to the typical
// length and reparses it, reapplying v's sign. Reports false when the
// truncated string does not parse back into a number.
func truncateMagnitude(v float64, typical int) (float64, bool) {
	digits := digitString(v)
	if typical < len(digits) {
		digits = digits[:typical]
	}
	m, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	if math.Signbit(v) {
		m = -m
	}
	return m, true
}
