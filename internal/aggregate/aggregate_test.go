package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-sim/internal/domain"
)

func TestSummarize_EndingBalanceFromLastMonth(t *testing.T) {
	monthly := []domain.MonthlyRecord{
		{MonthIndex: 0, TotalBalance: 100000},
		{MonthIndex: 1, TotalBalance: 101500},
		{MonthIndex: 2, TotalBalance: 99800},
	}
	summary := Summarize(monthly, nil, 99800, 101500)

	assert.Equal(t, 99800.0, summary.EndingBalance)
	assert.Equal(t, 99800.0, summary.MinBalance)
	assert.Equal(t, 101500.0, summary.MaxBalance)
	assert.False(t, summary.HasGuardrailStats)
}

func TestSummarize_EmptyTimelineYieldsZeroBalance(t *testing.T) {
	summary := Summarize(nil, nil, 0, 0)
	assert.Equal(t, 0.0, summary.EndingBalance)
	assert.False(t, summary.HasGuardrailStats)
}

func TestSummarize_GuardrailStatsIgnoreYearsWithoutAFactor(t *testing.T) {
	years := []domain.YearRecord{
		{Year: 2026, GuardrailFactor: 1.0, HasGuardrailFactor: true},
		{Year: 2027, GuardrailFactor: 0.9, HasGuardrailFactor: true},
		{Year: 2028}, // no guardrail configured this year
		{Year: 2029, GuardrailFactor: 0.8, HasGuardrailFactor: true},
	}
	summary := Summarize([]domain.MonthlyRecord{{TotalBalance: 1}}, years, 1, 1)

	assert.True(t, summary.HasGuardrailStats)
	assert.InDelta(t, 0.9, summary.GuardrailFactorAvg, 1e-9)
	assert.InDelta(t, 0.8, summary.GuardrailFactorMin, 1e-9)
	assert.InDelta(t, 2.0/3.0, summary.GuardrailFactorBelowPct, 1e-9)
}

func TestSummarize_NoGuardrailYearsLeavesStatsUnset(t *testing.T) {
	years := []domain.YearRecord{{Year: 2026}, {Year: 2027}}
	summary := Summarize(nil, years, 0, 0)

	assert.False(t, summary.HasGuardrailStats)
	assert.Zero(t, summary.GuardrailFactorAvg)
}
