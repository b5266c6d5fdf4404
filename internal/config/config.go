// Package config defines the data structures of an underwriting scenario file
// and includes functions for loading it and converting it into model inputs.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/underwriting"
	"github.com/iwvelando/property-underwriting/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds a single underwriting scenario plus runtime options.
type Configuration struct {
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty" json:"logging,omitempty"`
	Output    OutputConfig  `mapstructure:"output" yaml:"output,omitempty" json:"output,omitempty"`
	Property  Property      `mapstructure:"property" yaml:"property" json:"property"`
	Financing Financing     `mapstructure:"financing" yaml:"financing" json:"financing"`
	Units     []Unit        `mapstructure:"units" yaml:"units" json:"units"`
	Expenses  Expenses      `mapstructure:"expenses" yaml:"expenses" json:"expenses"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty" json:"level,omitempty"`                // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"`             // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty" json:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"` // pretty, csv, json
}

// Property describes the building and its acquisition.
type Property struct {
	Name                  string  `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	PurchasePrice         float64 `mapstructure:"purchasePrice" yaml:"purchasePrice" json:"purchasePrice"`
	BuildingSizeSqFt      float64 `mapstructure:"buildingSizeSqFt" yaml:"buildingSizeSqFt" json:"buildingSizeSqFt"`
	RenovationCostPerSqFt float64 `mapstructure:"renovationCostPerSqFt" yaml:"renovationCostPerSqFt" json:"renovationCostPerSqFt"`
}

// Financing holds the capital structure.
type Financing struct {
	EquityPercentage    float64 `mapstructure:"equityPercentage" yaml:"equityPercentage" json:"equityPercentage"`
	InterestRatePercent float64 `mapstructure:"interestRatePercent" yaml:"interestRatePercent" json:"interestRatePercent"`
}

// Unit is one rental unit.
type Unit struct {
	Name        string  `mapstructure:"name" yaml:"name,omitempty" json:"name,omitempty"`
	MonthlyRent float64 `mapstructure:"monthlyRent" yaml:"monthlyRent" json:"monthlyRent"`
}

// Expenses holds the operating expense assumptions.
type Expenses struct {
	TaxRatePercent         float64 `mapstructure:"taxRatePercent" yaml:"taxRatePercent" json:"taxRatePercent"`
	MaintenanceRatePercent float64 `mapstructure:"maintenanceRatePercent" yaml:"maintenanceRatePercent" json:"maintenanceRatePercent"`
	VacancyRatePercent     float64 `mapstructure:"vacancyRatePercent" yaml:"vacancyRatePercent" json:"vacancyRatePercent"`
	InsuranceAnnual        float64 `mapstructure:"insuranceAnnual" yaml:"insuranceAnnual" json:"insuranceAnnual"`
	WaterSewerAnnual       float64 `mapstructure:"waterSewerAnnual" yaml:"waterSewerAnnual" json:"waterSewerAnnual"`
	ElectricityAnnual      float64 `mapstructure:"electricityAnnual" yaml:"electricityAnnual" json:"electricityAnnual"`
	ManagementFeePercent   float64 `mapstructure:"managementFeePercent" yaml:"managementFeePercent" json:"managementFeePercent"`
}

// newViper returns a viper instance carrying the reference scenario as
// defaults and UNDERWRITING_* environment overrides.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)

	v.SetDefault("property.name", constants.DefaultPropertyName)
	v.SetDefault("property.purchasePrice", constants.DefaultPurchasePrice)
	v.SetDefault("property.buildingSizeSqFt", constants.DefaultBuildingSizeSqFt)
	v.SetDefault("property.renovationCostPerSqFt", constants.DefaultRenovationCostPerSqFt)

	v.SetDefault("financing.equityPercentage", constants.DefaultEquityPercentage)
	v.SetDefault("financing.interestRatePercent", constants.DefaultInterestRatePercent)

	units := make([]map[string]interface{}, constants.DefaultUnitCount)
	for i := range units {
		units[i] = map[string]interface{}{
			"name":        fmt.Sprintf("Unit %d", i+1),
			"monthlyRent": constants.DefaultUnitMonthlyRent,
		}
	}
	v.SetDefault("units", units)

	v.SetDefault("expenses.taxRatePercent", constants.DefaultTaxRatePercent)
	v.SetDefault("expenses.maintenanceRatePercent", constants.DefaultMaintenanceRate)
	v.SetDefault("expenses.vacancyRatePercent", constants.DefaultVacancyRatePercent)
	v.SetDefault("expenses.insuranceAnnual", constants.DefaultInsuranceAnnual)
	v.SetDefault("expenses.waterSewerAnnual", constants.DefaultWaterSewerAnnual)
	v.SetDefault("expenses.electricityAnnual", constants.DefaultElectricityAnnual)
	v.SetDefault("expenses.managementFeePercent", constants.DefaultManagementFeePercent)

	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// scenario there. Fields missing from the file take reference defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted scenario from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

// Default returns the reference scenario, with environment overrides applied.
func Default() (*Configuration, error) {
	return decode(newViper())
}

// FromInputs builds a scenario from model inputs, naming units in order.
func FromInputs(name string, in underwriting.Inputs) *Configuration {
	units := make([]Unit, len(in.UnitMonthlyRents))
	for i, rent := range in.UnitMonthlyRents {
		units[i] = Unit{Name: fmt.Sprintf("Unit %d", i+1), MonthlyRent: rent}
	}

	return &Configuration{
		Property: Property{
			Name:                  name,
			PurchasePrice:         in.PurchasePrice,
			BuildingSizeSqFt:      in.BuildingSizeSqFt,
			RenovationCostPerSqFt: in.RenovationCostPerSqFt,
		},
		Financing: Financing{
			EquityPercentage:    in.EquityPercentage,
			InterestRatePercent: in.InterestRatePercent,
		},
		Units: units,
		Expenses: Expenses{
			TaxRatePercent:         in.TaxRatePercent,
			MaintenanceRatePercent: in.MaintenanceRatePercent,
			VacancyRatePercent:     in.VacancyRatePercent,
			InsuranceAnnual:        in.InsuranceAnnual,
			WaterSewerAnnual:       in.WaterSewerAnnual,
			ElectricityAnnual:      in.ElectricityAnnual,
			ManagementFeePercent:   in.ManagementFeePercent,
		},
	}
}

// Inputs converts the scenario into model inputs.
func (c *Configuration) Inputs() underwriting.Inputs {
	rents := make([]float64, len(c.Units))
	for i, unit := range c.Units {
		rents[i] = unit.MonthlyRent
	}

	return underwriting.Inputs{
		PurchasePrice:          c.Property.PurchasePrice,
		BuildingSizeSqFt:       c.Property.BuildingSizeSqFt,
		RenovationCostPerSqFt:  c.Property.RenovationCostPerSqFt,
		EquityPercentage:       c.Financing.EquityPercentage,
		UnitMonthlyRents:       rents,
		TaxRatePercent:         c.Expenses.TaxRatePercent,
		MaintenanceRatePercent: c.Expenses.MaintenanceRatePercent,
		InterestRatePercent:    c.Financing.InterestRatePercent,
		VacancyRatePercent:     c.Expenses.VacancyRatePercent,
		InsuranceAnnual:        c.Expenses.InsuranceAnnual,
		WaterSewerAnnual:       c.Expenses.WaterSewerAnnual,
		ElectricityAnnual:      c.Expenses.ElectricityAnnual,
		ManagementFeePercent:   c.Expenses.ManagementFeePercent,
	}
}

// ValidateConfiguration performs general validation of the scenario and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	units := make([]validation.UnitConfig, 0, len(c.Units))
	for _, unit := range c.Units {
		units = append(units, validation.UnitConfig{Name: unit.Name, MonthlyRent: unit.MonthlyRent})
	}

	validator := validation.ScenarioValidator{
		Name:                c.Property.Name,
		EquityPercentage:    c.Financing.EquityPercentage,
		InterestRatePercent: c.Financing.InterestRatePercent,
		VacancyRatePercent:  c.Expenses.VacancyRatePercent,
		Units:               units,
	}
	return validator.ValidateAll()
}
