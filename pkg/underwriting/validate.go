package underwriting

import (
	"errors"
	"fmt"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/mathutil"
	"go.uber.org/multierr"
)

// ErrInvalidInput is matched by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// InputError describes a single invalid field.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is lets errors.Is(err, ErrInvalidInput) match any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Validate checks that every field is finite and non-negative and that the
// equity share lies within [0, 100]. All violations are combined into a
// single error; use multierr.Errors to list them.
func (in Inputs) Validate() error {
	var err error

	fields := []struct {
		name  string
		value float64
	}{
		{"purchasePrice", in.PurchasePrice},
		{"buildingSizeSqFt", in.BuildingSizeSqFt},
		{"renovationCostPerSqFt", in.RenovationCostPerSqFt},
		{"equityPercentage", in.EquityPercentage},
		{"taxRatePercent", in.TaxRatePercent},
		{"maintenanceRatePercent", in.MaintenanceRatePercent},
		{"interestRatePercent", in.InterestRatePercent},
		{"vacancyRatePercent", in.VacancyRatePercent},
		{"insuranceAnnual", in.InsuranceAnnual},
		{"waterSewerAnnual", in.WaterSewerAnnual},
		{"electricityAnnual", in.ElectricityAnnual},
		{"managementFeePercent", in.ManagementFeePercent},
	}
	for _, f := range fields {
		err = multierr.Append(err, checkAmount(f.name, f.value))
	}

	if mathutil.IsFinite(in.EquityPercentage) && in.EquityPercentage > constants.MaxEquityPercentage {
		err = multierr.Append(err, &InputError{
			Field:  "equityPercentage",
			Value:  in.EquityPercentage,
			Reason: "must not exceed 100",
		})
	}

	for i, rent := range in.UnitMonthlyRents {
		err = multierr.Append(err, checkAmount(fmt.Sprintf("unitMonthlyRents[%d]", i), rent))
	}

	return err
}

func checkAmount(field string, value float64) error {
	if !mathutil.IsFinite(value) {
		return &InputError{Field: field, Value: value, Reason: "must be a finite number"}
	}
	if value < 0 {
		return &InputError{Field: field, Value: value, Reason: "must not be negative"}
	}
	return nil
}

// checkFinite reports every derived figure that overflowed to an infinity or
// became NaN.
func (o Outputs) checkFinite() error {
	var err error

	figures := []struct {
		name  string
		value float64
	}{
		{"totalRenovationCost", o.TotalRenovationCost},
		{"totalProjectCost", o.TotalProjectCost},
		{"equityAmount", o.EquityAmount},
		{"debtAmount", o.DebtAmount},
		{"totalMonthlyRent", o.TotalMonthlyRent},
		{"annualRentIncome", o.AnnualRentIncome},
		{"totalExpenses", o.TotalExpenses},
		{"netOperatingIncome", o.NetOperatingIncome},
		{"annualInterestExpense", o.AnnualInterestExpense},
		{"freeCashFlow", o.FreeCashFlow},
	}
	for _, f := range figures {
		if !mathutil.IsFinite(f.value) {
			err = multierr.Append(err, &InputError{Field: f.name, Value: f.value, Reason: "overflows the representable range"})
		}
	}
	if o.CapRate.Defined && !mathutil.IsFinite(o.CapRate.Percent) {
		err = multierr.Append(err, &InputError{Field: "capRatePercent", Value: o.CapRate.Percent, Reason: "overflows the representable range"})
	}

	return err
}
