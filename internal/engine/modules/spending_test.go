package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
)

func spendingSnapshot(cfg domain.SpendingConfig) *domain.Snapshot {
	return &domain.Snapshot{
		Scenario:         domain.Scenario{PersonStrategyIDs: []string{"s1"}},
		PersonStrategies: []domain.PersonStrategy{{ID: "s1", Spending: cfg}},
	}
}

func flowByCategory(flows []domain.CashflowItem, cat domain.CashflowCategory) (float64, bool) {
	for _, f := range flows {
		if f.Category == cat {
			return -f.Cash, true
		}
	}
	return 0, false
}

// TestSpending_GuardrailCapWants mirrors the cap_wants literal scenario:
// monthly need 1000, want 2000, cash 120000, withdrawalRateLimit 0.04
// yields a need cashflow of 1000 and a want cashflow of 0.
func TestSpending_GuardrailCapWants(t *testing.T) {
	snap := spendingSnapshot(domain.SpendingConfig{
		MonthlyNeed: 1000,
		MonthlyWant: 2000,
		Guardrail: domain.GuardrailConfig{
			Type:                domain.GuardrailCapWants,
			WithdrawalRateLimit: 0.04,
		},
	})
	s := NewSpending()
	state := &domain.SimulationState{CashAccounts: []*domain.CashAccountState{{ID: "c1", Balance: 120000}}}
	ctx := &domain.SimulationContext{Snapshot: snap}

	flows := s.GetCashflows(state, ctx)

	need, ok := flowByCategory(flows, domain.CategorySpendingNeed)
	require.True(t, ok)
	assert.InDelta(t, 1000, need, 0.01)

	_, wantPresent := flowByCategory(flows, domain.CategorySpendingWant)
	assert.False(t, wantPresent, "want cashflow should be capped to zero and omitted")
}

// TestSpending_GuardrailPortfolioHealthInterpolation mirrors the
// portfolio_health literal scenario: health 0.9 interpolates between the
// 0.95->0.75 and 0.85->0.5 knots to a factor of 0.625, scaling a 1000
// want down to 625.
func TestSpending_GuardrailPortfolioHealthInterpolation(t *testing.T) {
	snap := spendingSnapshot(domain.SpendingConfig{
		MonthlyWant: 1000,
		Guardrail: domain.GuardrailConfig{
			Type:                 domain.GuardrailPortfolioHealth,
			TargetPortfolioValue: 100000,
			HealthPoints: []domain.GuardrailHealthPoint{
				{Health: 1.05, Factor: 1},
				{Health: 0.95, Factor: 0.75},
				{Health: 0.85, Factor: 0.5},
				{Health: 0.80, Factor: 0},
			},
		},
	})
	s := NewSpending()
	state := &domain.SimulationState{CashAccounts: []*domain.CashAccountState{{ID: "c1", Balance: 90000}}}
	ctx := &domain.SimulationContext{Snapshot: snap}

	flows := s.GetCashflows(state, ctx)

	want, ok := flowByCategory(flows, domain.CategorySpendingWant)
	require.True(t, ok)
	assert.InDelta(t, 625, want, 0.01)

	factor, has := s.LastGuardrailFactor()
	require.True(t, has)
	assert.InDelta(t, 0.625, factor, 0.0001)
}

// TestSpending_GuytonTrigger mirrors the Guyton literal scenario: a
// current withdrawal rate that exceeds the baseline rate by more than
// the trigger threshold cuts want spending by the applied cut for the
// configured duration.
func TestSpending_GuytonTrigger(t *testing.T) {
	snap := spendingSnapshot(domain.SpendingConfig{
		MonthlyNeed: 1000,
		MonthlyWant: 2000,
		Guardrail: domain.GuardrailConfig{
			Type:                      domain.GuardrailGuyton,
			TargetPortfolioValue:      100000,
			GuytonTriggerRateIncrease: 0.2,
			GuytonAppliedCut:          0.1,
			GuytonCutDurationMonths:   2,
		},
	})
	// The baseline rate is computed off the *configured* need/want
	// (1000+1000)/100000, not the scaled current amounts, per §4.2
	// spending "guyton".
	snap.PersonStrategies[0].Spending.MonthlyWant = 1000
	s := NewSpending()
	state := &domain.SimulationState{CashAccounts: []*domain.CashAccountState{{ID: "c1", Balance: 90000}}}

	// Simulate the configured baseline (1000/1000) against a current
	// want of 2000 by calling applyGuardrail directly, since the literal
	// scenario's "current need/want" differ from the persisted config.
	cfg := snap.PersonStrategies[0].Spending
	adjustedWant := s.applyGuardrail(cfg, state, 1000, 2000)

	assert.InDelta(t, 1800, adjustedWant, 0.01)
	assert.Equal(t, 1, s.guytonActiveCutMonths)
}

func TestSpending_NoGuardrailPassesThroughWant(t *testing.T) {
	snap := spendingSnapshot(domain.SpendingConfig{MonthlyNeed: 500, MonthlyWant: 300})
	s := NewSpending()
	state := &domain.SimulationState{}
	ctx := &domain.SimulationContext{Snapshot: snap}

	flows := s.GetCashflows(state, ctx)

	need, _ := flowByCategory(flows, domain.CategorySpendingNeed)
	want, _ := flowByCategory(flows, domain.CategorySpendingWant)
	assert.InDelta(t, 500, need, 0.01)
	assert.InDelta(t, 300, want, 0.01)
}
