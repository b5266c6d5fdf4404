// Package output provides utilities for formatting and displaying underwriting results.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/property-underwriting/pkg/constants"
	"github.com/iwvelando/property-underwriting/pkg/format"
	"github.com/iwvelando/property-underwriting/pkg/underwriting"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report bundles an evaluation with the inputs that produced it.
type Report struct {
	Name     string               `json:"name,omitempty"`
	Inputs   underwriting.Inputs  `json:"inputs"`
	Outputs  underwriting.Outputs `json:"outputs"`
	Warnings []string             `json:"warnings,omitempty"`
}

// Write renders the report in the named format.
func Write(w io.Writer, outputFormat string, report Report) error {
	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, report)
	case constants.OutputFormatCSV:
		return CsvFormat(w, report.Outputs)
	case constants.OutputFormatJSON:
		return JSONFormat(w, report)
	default:
		return fmt.Errorf("unsupported output format %s", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, report Report) error {
	p := message.NewPrinter(language.English)
	out := report.Outputs
	ew := &errWriter{w: w, p: p}

	if report.Name != "" {
		ew.printf("--- Underwriting for %s ---\n", report.Name)
	}

	ew.printf("\nProject Details\n")
	ew.printf("  Total Renovation Cost      | %s\n", format.Currency(out.TotalRenovationCost))
	ew.printf("  Total Project Cost         | %s\n", format.Currency(out.TotalProjectCost))
	ew.printf("  Equity Amount (%.1f%%)      | %s\n", report.Inputs.EquityPercentage, format.Currency(out.EquityAmount))
	ew.printf("  Debt Amount                | %s\n", format.Currency(out.DebtAmount))

	ew.printf("\nRevenue Projections\n")
	for i, rent := range report.Inputs.UnitMonthlyRents {
		ew.printf("  Unit %-3d (monthly)         | %s\n", i+1, format.Currency(rent))
	}
	ew.printf("  Total Monthly Rent         | %s\n", format.Currency(out.TotalMonthlyRent))
	ew.printf("  Annual Revenue             | %s\n", format.Currency(out.AnnualRentIncome))

	ew.printf("\nOperating Expenses\n")
	ew.printf("  Expense        | Amount | Running Total\n")
	ew.printf("  _______        | ______ | _____________\n")
	for _, item := range out.Expenses {
		ew.printf("  %-14s | %s | %s\n", item.Name, format.Currency(item.Amount), format.Currency(item.RunningTotal))
	}
	ew.printf("  Total Annual Operating Expenses | %s\n", format.Currency(out.TotalExpenses))

	ew.printf("\nSummary\n")
	ew.printf("  Net Operating Income (NOI) | %s\n", format.Currency(out.NetOperatingIncome))
	ew.printf("  Cap Rate                   | %s\n", format.CapRate(out.CapRate))
	ew.printf("  Annual Interest Expense    | %s\n", format.Currency(out.AnnualInterestExpense))
	ew.printf("  Free Cash Flow (FCF)       | %s\n", format.Currency(out.FreeCashFlow))

	if len(report.Warnings) > 0 {
		ew.printf("\nWarnings\n")
		for _, warning := range report.Warnings {
			ew.printf("  - %s\n", warning)
		}
	}

	return ew.err
}

// CsvFormat outputs the expense table followed by the summary rows in
// comma-separated value format.
func CsvFormat(w io.Writer, out underwriting.Outputs) error {
	cw := csv.NewWriter(w)
	records := [][]string{{"item", "amount", "running total"}}
	for _, item := range out.Expenses {
		records = append(records, []string{item.Name, amount(item.Amount), amount(item.RunningTotal)})
	}

	capRate := format.NotAvailable
	if out.CapRate.Defined {
		capRate = strconv.FormatFloat(out.CapRate.Percent, 'f', 2, 64)
	}

	records = append(records,
		[]string{"Total Operating Expenses", amount(out.TotalExpenses), ""},
		[]string{"Total Renovation Cost", amount(out.TotalRenovationCost), ""},
		[]string{"Total Project Cost", amount(out.TotalProjectCost), ""},
		[]string{"Equity Amount", amount(out.EquityAmount), ""},
		[]string{"Debt Amount", amount(out.DebtAmount), ""},
		[]string{"Total Monthly Rent", amount(out.TotalMonthlyRent), ""},
		[]string{"Annual Rent Income", amount(out.AnnualRentIncome), ""},
		[]string{"Net Operating Income", amount(out.NetOperatingIncome), ""},
		[]string{"Cap Rate (%)", capRate, ""},
		[]string{"Annual Interest Expense", amount(out.AnnualInterestExpense), ""},
		[]string{"Free Cash Flow", amount(out.FreeCashFlow), ""},
	)

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// CsvString returns the CSV rendering as a string.
func CsvString(out underwriting.Outputs) string {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, out); err != nil {
		return ""
	}
	return buf.String()
}

// JSONFormat outputs the report as indented JSON with raw numeric values.
func JSONFormat(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

type errWriter struct {
	w   io.Writer
	p   *message.Printer
	err error
}

func (ew *errWriter) printf(key string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = ew.p.Fprintf(ew.w, key, args...)
}
