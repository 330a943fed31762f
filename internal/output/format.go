// Package output renders a SimulationResult or a batch of SimulationRuns
// in the CLI's chosen presentation format (§6), grounded on the
// teacher's pluggable Formatter/ReportGenerator pair in
// internal/output/report.go and internal/output/csv_simple.go.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-sim/internal/domain"
)

// Formatter renders one run's result to bytes in its own format.
type Formatter interface {
	Name() string
	Format(run domain.SimulationRun) ([]byte, error)
}

// Render dispatches to the Formatter matching format ("table", "csv", or
// "json"); an unrecognized format is an error rather than a silent
// fallback, matching the teacher's GenerateReport switch.
func Render(format string, run domain.SimulationRun) ([]byte, error) {
	f, ok := formatters[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
	return f.Format(run)
}

var formatters = map[string]Formatter{
	"table": TableFormatter{},
	"csv":   CSVFormatter{},
	"json":  JSONFormatter{},
}

// money renders a float64 with decimal.Decimal's fixed-point string
// formatting, keeping presentation rounding out of the float64 engine
// path (§6 "rollups are rounded only at presentation").
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// TableFormatter renders the run's yearly timeline as a table, using
// tablewriter in place of the teacher's hand-rolled Printf table
// (internal/output/console_verbose_formatter.go).
type TableFormatter struct{}

func (TableFormatter) Name() string { return "table" }

func (TableFormatter) Format(run domain.SimulationRun) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "run %s (seed %d, status %s)\n", run.ID, run.Seed, run.Status)
	if run.Status == domain.StatusError {
		fmt.Fprintf(&buf, "error: %s\n", run.ErrorMessage)
		return buf.Bytes(), nil
	}

	table := tablewriter.NewWriter(&buf)
	table.Header("Year", "Age", "Income", "Spending", "Taxes", "Ending Balance")
	for _, y := range run.Result.Timeline {
		row := []string{
			fmt.Sprintf("%d", y.Year),
			fmt.Sprintf("%.1f", y.Age),
			money(y.Income),
			money(y.Spending),
			money(y.Taxes),
			money(y.EndingTotalBalance),
		}
		table.Append(row...)
	}
	if err := table.Render(); err != nil {
		return nil, err
	}

	summary := run.Result.Summary
	fmt.Fprintf(&buf, "\nending balance: %s  min: %s  max: %s\n",
		money(summary.EndingBalance), money(summary.MinBalance), money(summary.MaxBalance))
	if summary.HasGuardrailStats {
		fmt.Fprintf(&buf, "guardrail factor avg %.3f min %.3f below-target %.1f%%\n",
			summary.GuardrailFactorAvg, summary.GuardrailFactorMin, summary.GuardrailFactorBelowPct*100)
	}
	return buf.Bytes(), nil
}

// CSVFormatter writes one row per year, mirroring
// internal/output/csv_simple.go's per-scenario-row layout but at the
// year-record grain this engine produces.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(run domain.SimulationRun) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"Year", "Age", "Income", "Spending", "Taxes", "OrdinaryIncome", "CapitalGains", "EndingTotalBalance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, y := range run.Result.Timeline {
		row := []string{
			fmt.Sprintf("%d", y.Year),
			fmt.Sprintf("%.1f", y.Age),
			money(y.Income),
			money(y.Spending),
			money(y.Taxes),
			money(y.OrdinaryIncome),
			money(y.CapitalGains),
			money(y.EndingTotalBalance),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// JSONFormatter serializes the run verbatim, for external tooling.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(run domain.SimulationRun) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

// BatchSummaryTable renders one row per run across a batch dispatch,
// the multi-run analogue of csv_simple.go's one-row-per-scenario table.
func BatchSummaryTable(runs []domain.SimulationRun) ([]byte, error) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.Header("Run", "Seed", "Status", "Ending Balance", "Min Balance", "Max Balance")
	for _, r := range runs {
		row := []string{fmt.Sprintf("%d", r.RunIndex), fmt.Sprintf("%d", r.Seed), string(r.Status)}
		if r.Status == domain.StatusSuccess {
			row = append(row, money(r.Result.Summary.EndingBalance), money(r.Result.Summary.MinBalance), money(r.Result.Summary.MaxBalance))
		} else {
			row = append(row, "-", "-", "-")
		}
		table.Append(row...)
	}
	if err := table.Render(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
