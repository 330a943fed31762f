// Package aggregate implements the Summary Aggregator (§4.5): folding a
// run's year-by-year timeline into the headline RunSummary statistics
// the batch dispatcher and CLI report on.
package aggregate

import "github.com/rpgo/retirement-sim/internal/domain"

// Summarize derives a RunSummary from a completed run's monthly and
// yearly timelines. minBalance/maxBalance are the running extremes the
// scheduler tracked across every month, not just year boundaries.
func Summarize(monthly []domain.MonthlyRecord, years []domain.YearRecord, minBalance, maxBalance float64) domain.RunSummary {
	summary := domain.RunSummary{
		EndingBalance: endingBalance(monthly),
		MinBalance:    minBalance,
		MaxBalance:    maxBalance,
	}
	applyGuardrailStats(&summary, years)
	return summary
}

func endingBalance(monthly []domain.MonthlyRecord) float64 {
	if len(monthly) == 0 {
		return 0
	}
	return monthly[len(monthly)-1].TotalBalance
}

// applyGuardrailStats folds each year's guardrail factor (if any module
// reported one) into the run-level average/min/below-target fraction.
func applyGuardrailStats(summary *domain.RunSummary, years []domain.YearRecord) {
	var sum, min float64
	var belowOne, n int
	for _, y := range years {
		if !y.HasGuardrailFactor {
			continue
		}
		if n == 0 || y.GuardrailFactor < min {
			min = y.GuardrailFactor
		}
		sum += y.GuardrailFactor
		if y.GuardrailFactor < 1 {
			belowOne++
		}
		n++
	}
	if n == 0 {
		return
	}
	summary.HasGuardrailStats = true
	summary.GuardrailFactorAvg = sum / float64(n)
	summary.GuardrailFactorMin = min
	summary.GuardrailFactorBelowPct = float64(belowOne) / float64(n)
}
