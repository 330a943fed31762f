package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
)

func rebalancingContext(glidepath []domain.GlidepathPoint) *domain.SimulationContext {
	snap := &domain.Snapshot{
		InvestmentAccounts: []domain.InvestmentAccount{
			{
				ID: "acct1",
				Rebalancing: domain.RebalancingConfig{
					Enabled:        true,
					Frequency:      domain.RebalanceMonthly,
					DriftThreshold: 0.01,
					MinTradeAmount: 1,
					Glidepath:      glidepath,
				},
			},
		},
	}
	return &domain.SimulationContext{Snapshot: snap, Age: 50}
}

func TestRebalancing_SameTaxTypeTradeIsTaxExempt(t *testing.T) {
	ctx := rebalancingContext([]domain.GlidepathPoint{
		{Age: 0, Weights: map[string]float64{"stocks": 0.5, "bonds": 0.5}},
	})
	r := NewRebalancing()

	state := &domain.SimulationState{Holdings: []*domain.HoldingState{
		{ID: "stocks", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 8000},
		{ID: "bonds", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 2000},
	}}

	intents := r.GetActionIntents(state, ctx)

	require.Len(t, intents, 1)
	assert.Equal(t, domain.ActionConvert, intents[0].Kind)
	assert.Equal(t, domain.TreatmentTaxExempt, intents[0].TaxTreatment)
	assert.InDelta(t, 3000, intents[0].Amount, 0.01)
}

func TestRebalancing_CrossTaxTypeTradeLeavesTreatmentUnset(t *testing.T) {
	ctx := rebalancingContext([]domain.GlidepathPoint{
		{Age: 0, Weights: map[string]float64{"trad": 0.5, "roth": 0.5}},
	})
	r := NewRebalancing()

	state := &domain.SimulationState{Holdings: []*domain.HoldingState{
		{ID: "trad", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 8000},
		{ID: "roth", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeRoth, Balance: 2000},
	}}

	intents := r.GetActionIntents(state, ctx)

	require.Len(t, intents, 1)
	assert.Empty(t, intents[0].TaxTreatment)
}

func TestRebalancing_NoTradeBelowDriftThreshold(t *testing.T) {
	ctx := rebalancingContext([]domain.GlidepathPoint{
		{Age: 0, Weights: map[string]float64{"stocks": 0.5, "bonds": 0.5}},
	})
	r := NewRebalancing()

	state := &domain.SimulationState{Holdings: []*domain.HoldingState{
		{ID: "stocks", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 5005},
		{ID: "bonds", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 4995},
	}}

	intents := r.GetActionIntents(state, ctx)

	assert.Empty(t, intents)
}

func TestRebalancing_DisabledAccountSkipped(t *testing.T) {
	ctx := rebalancingContext([]domain.GlidepathPoint{
		{Age: 0, Weights: map[string]float64{"stocks": 0.5, "bonds": 0.5}},
	})
	ctx.Snapshot.InvestmentAccounts[0].Rebalancing.Enabled = false
	r := NewRebalancing()

	state := &domain.SimulationState{Holdings: []*domain.HoldingState{
		{ID: "stocks", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 9000},
		{ID: "bonds", InvestmentAccountID: "acct1", TaxType: domain.TaxTypeTraditional, Balance: 1000},
	}}

	intents := r.GetActionIntents(state, ctx)

	assert.Empty(t, intents)
}
