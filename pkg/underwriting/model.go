// Package underwriting computes the pro-forma of a single redevelopment
// project: total cost, capital structure, revenue, operating expenses, NOI,
// cap rate and free cash flow.
//
// Every value is carried as a raw float64. Rounding and currency formatting
// belong to the presentation layer (see pkg/format and pkg/output).
package underwriting

import (
	"encoding/json"
	"errors"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/mathutil"
)

// ErrUndefinedCapRate is returned when the cap rate is requested for a
// project whose total cost is zero.
var ErrUndefinedCapRate = errors.New("cap rate undefined: total project cost is zero")

// Expense line item names, in report order.
const (
	ExpenseTaxes       = "Annual Taxes"
	ExpenseMaintenance = "Maintenance"
	ExpenseVacancy     = "Vacancy"
	ExpenseInsurance   = "Insurance"
	ExpenseWaterSewer  = "Water & Sewer"
	ExpenseElectricity = "Electricity"
	ExpenseManagement  = "Management"
)

// Inputs holds the caller-supplied parameters of one scenario. Rate fields
// are percentages out of 100, so 7.0 means 7%.
type Inputs struct {
	PurchasePrice         float64   `json:"purchasePrice" yaml:"purchasePrice"`
	BuildingSizeSqFt      float64   `json:"buildingSizeSqFt" yaml:"buildingSizeSqFt"`
	RenovationCostPerSqFt float64   `json:"renovationCostPerSqFt" yaml:"renovationCostPerSqFt"`
	EquityPercentage      float64   `json:"equityPercentage" yaml:"equityPercentage"`
	UnitMonthlyRents      []float64 `json:"unitMonthlyRents" yaml:"unitMonthlyRents"`

	TaxRatePercent         float64 `json:"taxRatePercent" yaml:"taxRatePercent"`
	MaintenanceRatePercent float64 `json:"maintenanceRatePercent" yaml:"maintenanceRatePercent"`
	InterestRatePercent    float64 `json:"interestRatePercent" yaml:"interestRatePercent"`
	VacancyRatePercent     float64 `json:"vacancyRatePercent" yaml:"vacancyRatePercent"`

	InsuranceAnnual   float64 `json:"insuranceAnnual" yaml:"insuranceAnnual"`
	WaterSewerAnnual  float64 `json:"waterSewerAnnual" yaml:"waterSewerAnnual"`
	ElectricityAnnual float64 `json:"electricityAnnual" yaml:"electricityAnnual"`

	ManagementFeePercent float64 `json:"managementFeePercent" yaml:"managementFeePercent"`
}

// DefaultInputs returns the reference scenario.
func DefaultInputs() Inputs {
	rents := make([]float64, constants.DefaultUnitCount)
	for i := range rents {
		rents[i] = constants.DefaultUnitMonthlyRent
	}
	return Inputs{
		PurchasePrice:          constants.DefaultPurchasePrice,
		BuildingSizeSqFt:       constants.DefaultBuildingSizeSqFt,
		RenovationCostPerSqFt:  constants.DefaultRenovationCostPerSqFt,
		EquityPercentage:       constants.DefaultEquityPercentage,
		UnitMonthlyRents:       rents,
		TaxRatePercent:         constants.DefaultTaxRatePercent,
		MaintenanceRatePercent: constants.DefaultMaintenanceRate,
		InterestRatePercent:    constants.DefaultInterestRatePercent,
		VacancyRatePercent:     constants.DefaultVacancyRatePercent,
		InsuranceAnnual:        constants.DefaultInsuranceAnnual,
		WaterSewerAnnual:       constants.DefaultWaterSewerAnnual,
		ElectricityAnnual:      constants.DefaultElectricityAnnual,
		ManagementFeePercent:   constants.DefaultManagementFeePercent,
	}
}

// ExpenseItem is one operating expense line with the cumulative total of
// all lines up to and including it.
type ExpenseItem struct {
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	RunningTotal float64 `json:"runningTotal"`
}

// CapRate is a cap rate that may be absent. Defined is false when the total
// project cost is zero; Percent is then zero and must not be displayed.
type CapRate struct {
	Percent float64
	Defined bool
}

// MarshalJSON encodes an undefined cap rate as null.
func (c CapRate) MarshalJSON() ([]byte, error) {
	if !c.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(c.Percent)
}

// UnmarshalJSON decodes null as an undefined cap rate.
func (c *CapRate) UnmarshalJSON(data []byte) error {
	var p *float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p == nil {
		*c = CapRate{}
		return nil
	}
	*c = CapRate{Percent: *p, Defined: true}
	return nil
}

// Outputs holds every intermediate and final value of an evaluation.
type Outputs struct {
	TotalRenovationCost float64 `json:"totalRenovationCost"`
	TotalProjectCost    float64 `json:"totalProjectCost"`
	EquityAmount        float64 `json:"equityAmount"`
	DebtAmount          float64 `json:"debtAmount"`

	TotalMonthlyRent float64 `json:"totalMonthlyRent"`
	AnnualRentIncome float64 `json:"annualRentIncome"`

	AnnualTaxes           float64 `json:"annualTaxes"`
	AnnualMaintenanceCost float64 `json:"annualMaintenanceCost"`
	VacancyExpense        float64 `json:"vacancyExpense"`
	InsuranceCost         float64 `json:"insuranceCost"`
	WaterSewerCost        float64 `json:"waterSewerCost"`
	ElectricityCost       float64 `json:"electricityCost"`
	ManagementCost        float64 `json:"managementCost"`

	// Expenses lists the operating expense lines in report order.
	// Interest is not an operating expense and never appears here.
	Expenses      []ExpenseItem `json:"expenses"`
	TotalExpenses float64       `json:"totalExpenses"`

	AnnualInterestExpense float64 `json:"annualInterestExpense"`
	NetOperatingIncome    float64 `json:"netOperatingIncome"`
	CapRate               CapRate `json:"capRatePercent"`
	FreeCashFlow          float64 `json:"freeCashFlow"`
}

// CapRatePercent returns the cap rate, or ErrUndefinedCapRate when the total
// project cost is zero.
func (o Outputs) CapRatePercent() (float64, error) {
	if !o.CapRate.Defined {
		return 0, ErrUndefinedCapRate
	}
	return o.CapRate.Percent, nil
}

// Evaluate validates in and computes the pro-forma. On invalid input, or
// inputs large enough that a derived figure overflows, it returns the zero
// Outputs and an error matching ErrInvalidInput.
func Evaluate(in Inputs) (Outputs, error) {
	if err := in.Validate(); err != nil {
		return Outputs{}, err
	}

	out := EvaluateUnchecked(in)
	if err := out.checkFinite(); err != nil {
		return Outputs{}, err
	}
	return out, nil
}

// EvaluateUnchecked computes the pro-forma without validating in. Out of range
// inputs yield arithmetically consistent results, e.g. a negative debt amount
// when the equity share exceeds 100%.
func EvaluateUnchecked(in Inputs) Outputs {
	var out Outputs

	out.TotalRenovationCost = in.BuildingSizeSqFt * in.RenovationCostPerSqFt
	out.TotalProjectCost = in.PurchasePrice + out.TotalRenovationCost

	out.EquityAmount = mathutil.ApplyPercentage(out.TotalProjectCost, in.EquityPercentage)
	out.DebtAmount = out.TotalProjectCost - out.EquityAmount

	out.TotalMonthlyRent = mathutil.Sum(in.UnitMonthlyRents...)
	out.AnnualRentIncome = out.TotalMonthlyRent * constants.MonthsPerYear

	out.AnnualTaxes = mathutil.ApplyPercentage(out.TotalProjectCost, in.TaxRatePercent)
	out.AnnualMaintenanceCost = mathutil.ApplyPercentage(out.AnnualRentIncome, in.MaintenanceRatePercent)
	out.VacancyExpense = mathutil.ApplyPercentage(out.AnnualRentIncome, in.VacancyRatePercent)
	out.InsuranceCost = in.InsuranceAnnual
	out.WaterSewerCost = in.WaterSewerAnnual
	out.ElectricityCost = in.ElectricityAnnual
	out.ManagementCost = mathutil.ApplyPercentage(out.AnnualRentIncome, in.ManagementFeePercent)

	// Financing cost, applied only below NOI.
	out.AnnualInterestExpense = mathutil.ApplyPercentage(out.DebtAmount, in.InterestRatePercent)

	out.Expenses = expenseItems(out)
	out.TotalExpenses = out.Expenses[len(out.Expenses)-1].RunningTotal

	out.NetOperatingIncome = out.AnnualRentIncome - out.TotalExpenses
	if pct, ok := mathutil.CalculatePercentage(out.NetOperatingIncome, out.TotalProjectCost); ok {
		out.CapRate = CapRate{Percent: pct, Defined: true}
	}
	out.FreeCashFlow = out.NetOperatingIncome - out.AnnualInterestExpense

	return out
}

func expenseItems(out Outputs) []ExpenseItem {
	items := []ExpenseItem{
		{Name: ExpenseTaxes, Amount: out.AnnualTaxes},
		{Name: ExpenseMaintenance, Amount: out.AnnualMaintenanceCost},
		{Name: ExpenseVacancy, Amount: out.VacancyExpense},
		{Name: ExpenseInsurance, Amount: out.InsuranceCost},
		{Name: ExpenseWaterSewer, Amount: out.WaterSewerCost},
		{Name: ExpenseElectricity, Amount: out.ElectricityCost},
		{Name: ExpenseManagement, Amount: out.ManagementCost},
	}
	running := 0.0
	for i := range items {
		running += items[i].Amount
		items[i].RunningTotal = running
	}
	return items
}
