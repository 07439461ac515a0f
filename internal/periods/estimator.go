package periods

import "github.com/ignite/campaign-estimator/internal/tabular"

// Basis names which comparison period contributed data to the estimate.
type Basis string

const (
	BasisBoth        Basis = "both"
	BasisEarlierOnly Basis = "earlier_only"
	BasisLaterOnly   Basis = "later_only"
	BasisNone        Basis = "none"
)

// Result is the outcome of one estimation call.
type Result struct {
	Value *float64 `json:"value"`
	Basis Basis    `json:"basis"`
}

// Estimate blends the earlier period's growth-adjusted demand average with
// the later period's average. "Empty" means zero matching rows, not zero
// demand: a row with Demand 0 counts toward its mean normally, and a
// period whose rows all lack a usable Demand still contributes a 0 mean.
// The growth percentage is accepted as-is; bounding it is the caller's
// concern. This is a deliberately simple blended average, not a
// time-series model.
func Estimate(earlier, later *tabular.Table, growthPercent float64) Result {
	adjustedEarlier := demandMean(earlier) * (1 + growthPercent/100)
	laterMean := demandMean(later)

	switch {
	case earlier.Empty() && later.Empty():
		return Result{Basis: BasisNone}
	case earlier.Empty():
		return Result{Value: &laterMean, Basis: BasisLaterOnly}
	case later.Empty():
		return Result{Value: &adjustedEarlier, Basis: BasisEarlierOnly}
	}
	blended := (adjustedEarlier + laterMean) / 2
	return Result{Value: &blended, Basis: BasisBoth}
}

// demandMean is the arithmetic mean of the non-null Demand values, or 0
// when there are none.
func demandMean(t *tabular.Table) float64 {
	sum, n := 0.0, 0
	for _, r := range t.Rows {
		if r.Demand == nil {
			continue
		}
		sum += *r.Demand
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
