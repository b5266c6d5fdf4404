package validation

import (
	"fmt"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/mathutil"
)

// ScenarioValidator holds the parts of a scenario that can produce non-fatal
// warnings. Hard input errors are reported by underwriting.Inputs.Validate.
type ScenarioValidator struct {
	Name                string
	EquityPercentage    float64
	InterestRatePercent float64
	VacancyRatePercent  float64
	Units               []UnitConfig
}

// UnitConfig is a rental unit as named in the scenario file.
type UnitConfig struct {
	Name        string
	MonthlyRent float64
}

// ValidateUnits warns about an empty rent roll and units without rent.
func ValidateUnits(units []UnitConfig) []string {
	if len(units) == 0 {
		return []string{"No rental units configured - annual revenue will be zero"}
	}

	var warnings []string
	for i, unit := range units {
		name := unit.Name
		if name == "" {
			name = fmt.Sprintf("Unit %d", i+1)
		}
		if mathutil.IsZero(unit.MonthlyRent) {
			warnings = append(warnings, fmt.Sprintf("Unit '%s' has zero monthly rent", name))
		}
	}
	return warnings
}

// ValidateFinancing warns about all-debt or all-equity structures.
func ValidateFinancing(equityPercentage, interestRatePercent float64) []string {
	var warnings []string

	switch equityPercentage {
	case 0:
		warnings = append(warnings, "Equity portion is 0% - project is fully debt financed")
	case constants.MaxEquityPercentage:
		if interestRatePercent > 0 {
			warnings = append(warnings, fmt.Sprintf("Equity portion is 100%% - interest rate of %.2f%% has no effect", interestRatePercent))
		}
	}

	return warnings
}

// ValidateCashFlow warns when the evaluated scenario loses money, either
// before financing (negative NOI) or after interest (negative FCF).
func ValidateCashFlow(name string, netOperatingIncome, freeCashFlow float64) []string {
	var warnings []string

	switch {
	case mathutil.IsNegative(netOperatingIncome):
		warnings = append(warnings, fmt.Sprintf("Net operating income is negative (%.2f) - operating expenses exceed revenue", netOperatingIncome))
	case mathutil.IsNegative(freeCashFlow):
		warnings = append(warnings, fmt.Sprintf("Free cash flow is negative (%.2f) - interest exceeds net operating income", freeCashFlow))
	}

	return withScenarioName(name, warnings)
}

// ValidateAll validates the scenario and returns warnings
func (sv *ScenarioValidator) ValidateAll() []string {
	var warnings []string

	warnings = append(warnings, ValidateUnits(sv.Units)...)
	warnings = append(warnings, ValidateFinancing(sv.EquityPercentage, sv.InterestRatePercent)...)

	if sv.VacancyRatePercent > constants.HighVacancyRatePercent {
		warnings = append(warnings, fmt.Sprintf("Vacancy rate of %.2f%% exceeds %.0f%% of potential revenue",
			sv.VacancyRatePercent, constants.HighVacancyRatePercent))
	}

	return withScenarioName(sv.Name, warnings)
}

func withScenarioName(name string, warnings []string) []string {
	if name != "" {
		for i := range warnings {
			warnings[i] = fmt.Sprintf("Scenario '%s': %s", name, warnings[i])
		}
	}
	return warnings
}
