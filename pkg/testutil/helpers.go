// Package testutil provides common utility functions for testing.
package testutil

import (
	"testing"

	"github.com/iwvelando/property-underwriting/pkg/mathutil"
	"github.com/iwvelando/property-underwriting/pkg/underwriting"
)

// Tolerance is the absolute tolerance used when comparing monetary outputs.
const Tolerance = 1e-6

// ReferenceOutputs are the expected results for the 99 Main Street scenario
// produced by underwriting.DefaultInputs.
var ReferenceOutputs = underwriting.Outputs{
	TotalRenovationCost:   1300000,
	TotalProjectCost:      1730000,
	EquityAmount:          432500,
	DebtAmount:            1297500,
	TotalMonthlyRent:      17500,
	AnnualRentIncome:      210000,
	TotalExpenses:         73625,
	NetOperatingIncome:    136375,
	AnnualInterestExpense: 84337.5,
	FreeCashFlow:          52037.5,
	CapRate:               underwriting.CapRate{Percent: 136375.0 / 1730000.0 * 100, Defined: true},
}

// AssertOutputsMatch fails t when any summary figure in got differs from want
// by more than Tolerance. Expense line items are not compared.
func AssertOutputsMatch(t testing.TB, want, got underwriting.Outputs) {
	t.Helper()

	checks := []struct {
		name      string
		want, got float64
	}{
		{"TotalRenovationCost", want.TotalRenovationCost, got.TotalRenovationCost},
		{"TotalProjectCost", want.TotalProjectCost, got.TotalProjectCost},
		{"EquityAmount", want.EquityAmount, got.EquityAmount},
		{"DebtAmount", want.DebtAmount, got.DebtAmount},
		{"TotalMonthlyRent", want.TotalMonthlyRent, got.TotalMonthlyRent},
		{"AnnualRentIncome", want.AnnualRentIncome, got.AnnualRentIncome},
		{"TotalExpenses", want.TotalExpenses, got.TotalExpenses},
		{"NetOperatingIncome", want.NetOperatingIncome, got.NetOperatingIncome},
		{"AnnualInterestExpense", want.AnnualInterestExpense, got.AnnualInterestExpense},
		{"FreeCashFlow", want.FreeCashFlow, got.FreeCashFlow},
	}
	for _, c := range checks {
		if !mathutil.WithinTolerance(c.want, c.got, Tolerance) {
			t.Errorf("%s = %.6f, want %.6f", c.name, c.got, c.want)
		}
	}

	if want.CapRate.Defined != got.CapRate.Defined {
		t.Errorf("CapRate.Defined = %v, want %v", got.CapRate.Defined, want.CapRate.Defined)
		return
	}
	if !mathutil.WithinTolerance(want.CapRate.Percent, got.CapRate.Percent, Tolerance) {
		t.Errorf("CapRate.Percent = %.6f, want %.6f", got.CapRate.Percent, want.CapRate.Percent)
	}
}
