// Package proforma runs a loaded scenario through the underwriting model and
// collects everything a caller needs to render the result.
package proforma

import (
	"fmt"
	"time"

	"github.com/iwvelando/property-underwriting/internal/config"
	"github.com/iwvelando/property-underwriting/pkg/format"
	"github.com/iwvelando/property-underwriting/pkg/mathutil"
	"github.com/iwvelando/property-underwriting/pkg/output"
	"github.com/iwvelando/property-underwriting/pkg/underwriting"
	"github.com/iwvelando/property-underwriting/pkg/validation"
	"go.uber.org/zap"
)

// ProForma holds the evaluation of one scenario.
type ProForma struct {
	Name     string
	Inputs   underwriting.Inputs
	Outputs  underwriting.Outputs
	Warnings []string
	Duration time.Duration
}

// Report converts the pro-forma into a renderable report.
func (p ProForma) Report() output.Report {
	return output.Report{
		Name:     p.Name,
		Inputs:   p.Inputs,
		Outputs:  p.Outputs,
		Warnings: p.Warnings,
	}
}

// GetProForma validates and evaluates the scenario in conf. Configuration
// warnings are returned alongside the result; invalid inputs are an error
// matching underwriting.ErrInvalidInput.
func GetProForma(logger *zap.Logger, conf config.Configuration) (ProForma, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()
	result := ProForma{
		Name:     conf.Property.Name,
		Inputs:   conf.Inputs(),
		Warnings: conf.ValidateConfiguration(),
	}

	for _, warning := range result.Warnings {
		logger.Debug("configuration warning: "+warning,
			zap.String("op", "proforma.GetProForma"),
		)
	}

	out, err := underwriting.Evaluate(result.Inputs)
	if err != nil {
		return result, fmt.Errorf("failed to evaluate scenario %q: %w", result.Name, err)
	}
	result.Outputs = out
	result.Duration = time.Since(start)

	cashFlowWarnings := validation.ValidateCashFlow(result.Name, out.NetOperatingIncome, out.FreeCashFlow)
	for _, warning := range cashFlowWarnings {
		logger.Debug("cash flow warning: "+warning,
			zap.String("op", "proforma.GetProForma"),
		)
	}
	result.Warnings = append(result.Warnings, cashFlowWarnings...)

	if !out.CapRate.Defined {
		logger.Warn("cap rate undefined because total project cost is zero",
			zap.String("op", "proforma.GetProForma"),
			zap.String("scenario", result.Name),
		)
	}

	logger.Debug("pro-forma computed",
		zap.String("op", "proforma.GetProForma"),
		zap.String("scenario", result.Name),
		zap.Int("units", len(result.Inputs.UnitMonthlyRents)),
		zap.Float64("totalProjectCost", mathutil.Round(out.TotalProjectCost)),
		zap.Float64("netOperatingIncome", mathutil.Round(out.NetOperatingIncome)),
		zap.String("capRate", format.CapRate(out.CapRate)),
		zap.Float64("freeCashFlow", mathutil.Round(out.FreeCashFlow)),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}
