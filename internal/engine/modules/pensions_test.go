package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
)

func pensionSnapshot(start string, treatment domain.TaxTreatment) *domain.Snapshot {
	startDate := mustDate(start)
	return &domain.Snapshot{
		Scenario: domain.Scenario{
			PersonStrategyIDs: []string{"s1"},
			InflationRates:    domain.InflationRates{CPI: 0.03},
		},
		PersonStrategies: []domain.PersonStrategy{
			{
				ID: "s1",
				Pensions: []domain.PensionConfig{
					{ID: "pension-1", MonthlyAmount: 2000, StartDate: startDate, InflationType: domain.InflationCPI, TaxTreatment: treatment},
				},
			},
		},
	}
}

func TestPensions_NoPayoutBeforeStartDate(t *testing.T) {
	snap := pensionSnapshot("2030-01-01", domain.TreatmentOrdinary)
	p := NewPensions()
	ctx := &domain.SimulationContext{Snapshot: snap, Date: mustDate("2026-01-01")}

	flows := p.GetCashflows(nil, ctx)

	assert.Empty(t, flows)
}

func TestPensions_PayoutAtStartIsUninflated(t *testing.T) {
	snap := pensionSnapshot("2026-01-01", domain.TreatmentOrdinary)
	p := NewPensions()
	ctx := &domain.SimulationContext{Snapshot: snap, Date: mustDate("2026-01-01")}

	flows := p.GetCashflows(nil, ctx)

	require.Len(t, flows, 1)
	assert.InDelta(t, 2000.0, flows[0].Cash, 0.01)
	assert.Equal(t, domain.CategoryPension, flows[0].Category)
	assert.InDelta(t, 2000.0, flows[0].OrdinaryIncome, 0.01)
}

func TestPensions_PayoutInflatesOverYears(t *testing.T) {
	snap := pensionSnapshot("2026-01-01", domain.TreatmentOrdinary)
	p := NewPensions()
	ctx := &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-01-01")}

	flows := p.GetCashflows(nil, ctx)

	require.Len(t, flows, 1)
	assert.InDelta(t, 2000.0*1.03, flows[0].Cash, 0.5)
}

func TestPensions_TaxExemptTreatmentSetsTaxExemptIncome(t *testing.T) {
	snap := pensionSnapshot("2026-01-01", domain.TreatmentTaxExempt)
	p := NewPensions()
	ctx := &domain.SimulationContext{Snapshot: snap, Date: mustDate("2026-01-01")}

	flows := p.GetCashflows(nil, ctx)

	require.Len(t, flows, 1)
	assert.Zero(t, flows[0].OrdinaryIncome)
	assert.InDelta(t, 2000.0, flows[0].TaxExemptIncome, 0.01)
}
