// Package constants provides shared constants for the property-underwriting application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxEquityPercentage is the upper bound of the equity slider
	MaxEquityPercentage = 100.0
)

// Reference scenario defaults (99 Main Street).
const (
	DefaultPropertyName          = "99 Main Street"
	DefaultPurchasePrice         = 430000.0
	DefaultBuildingSizeSqFt      = 13000.0
	DefaultRenovationCostPerSqFt = 100.0
	DefaultEquityPercentage      = 25.0
	DefaultUnitCount             = 7
	DefaultUnitMonthlyRent       = 2500.0
	DefaultTaxRatePercent        = 1.25
	DefaultMaintenanceRate       = 7.0
	DefaultInterestRatePercent   = 6.5
	DefaultVacancyRatePercent    = 7.0
	DefaultInsuranceAnnual       = 5000.0
	DefaultWaterSewerAnnual      = 3000.0
	DefaultElectricityAnnual     = 2000.0

	// DefaultManagementFeePercent is the management fee applied to annual rent income.
	DefaultManagementFeePercent = 6.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the machine-readable JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default scenario file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example scenario file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is prepended to environment variable overrides, e.g.
	// UNDERWRITING_FINANCING_EQUITYPERCENTAGE.
	EnvPrefix = "UNDERWRITING"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML scenarios (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024

	// DefaultShutdownTimeoutSeconds bounds graceful shutdown of the web UI
	DefaultShutdownTimeoutSeconds = 10
)

// Validation constants
const (
	// HighVacancyRatePercent triggers a configuration warning when exceeded
	HighVacancyRatePercent = 50.0
)
