package periods

import (
	"math"
	"testing"

	"github.com/ignite/campaign-estimator/internal/tabular"
)

func tableWithDemands(demands ...*float64) *tabular.Table {
	t := &tabular.Table{Columns: []string{"Demand"}}
	for _, d := range demands {
		t.Rows = append(t.Rows, &tabular.Record{Demand: d})
	}
	return t
}

func dm(v float64) *float64 { return &v }

func TestEstimateBothPeriods(t *testing.T) {
	earlier := tableWithDemands(dm(100))
	later := tableWithDemands(dm(200))

	got := Estimate(earlier, later, 10)
	if got.Basis != BasisBoth {
		t.Fatalf("basis = %s, want both", got.Basis)
	}
	// (100 * 1.10 + 200) / 2
	if got.Value == nil || math.Abs(*got.Value-155) > 1e-9 {
		t.Errorf("value = %v, want 155", got.Value)
	}
}

func TestEstimateEarlierOnly(t *testing.T) {
	earlier := tableWithDemands(dm(100), dm(300))
	later := tableWithDemands()

	got := Estimate(earlier, later, 50)
	if got.Basis != BasisEarlierOnly {
		t.Fatalf("basis = %s, want earlier_only", got.Basis)
	}
	// mean 200, grown by 50%
	if got.Value == nil || math.Abs(*got.Value-300) > 1e-9 {
		t.Errorf("value = %v, want 300", got.Value)
	}
}

func TestEstimateLaterOnly(t *testing.T) {
	got := Estimate(tableWithDemands(), tableWithDemands(dm(80), dm(120)), 25)
	if got.Basis != BasisLaterOnly {
		t.Fatalf("basis = %s, want later_only", got.Basis)
	}
	// Growth applies to the earlier period only.
	if got.Value == nil || *got.Value != 100 {
		t.Errorf("value = %v, want 100", got.Value)
	}
}

func TestEstimateNoData(t *testing.T) {
	got := Estimate(tableWithDemands(), tableWithDemands(), 10)
	if got.Basis != BasisNone {
		t.Fatalf("basis = %s, want none", got.Basis)
	}
	if got.Value != nil {
		t.Errorf("value = %v, want nil", *got.Value)
	}
}

func TestEstimateZeroDemandCounts(t *testing.T) {
	// A demand of 0 is data, not absence of data.
	got := Estimate(tableWithDemands(dm(0)), tableWithDemands(dm(0)), 100)
	if got.Basis != BasisBoth {
		t.Fatalf("basis = %s, want both", got.Basis)
	}
	if got.Value == nil || *got.Value != 0 {
		t.Errorf("value = %v, want 0", got.Value)
	}
}

func TestEstimateNullDemandRows(t *testing.T) {
	// Rows exist but carry no usable demand: the period still counts as
	// present, contributing a 0 mean.
	got := Estimate(tableWithDemands(nil, nil), tableWithDemands(dm(200)), 10)
	if got.Basis != BasisBoth {
		t.Fatalf("basis = %s, want both", got.Basis)
	}
	if got.Value == nil || *got.Value != 100 {
		t.Errorf("value = %v, want 100", got.Value)
	}
}

func TestEstimateNegativeGrowth(t *testing.T) {
	got := Estimate(tableWithDemands(dm(100)), tableWithDemands(dm(100)), -50)
	if got.Value == nil || *got.Value != 75 {
		t.Errorf("value = %v, want 75", got.Value)
	}
}
