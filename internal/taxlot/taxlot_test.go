package taxlot_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/taxlot"
)

func newCtx(age float64, date time.Time) *domain.SimulationContext {
	return &domain.SimulationContext{
		Snapshot: &domain.Snapshot{
			EarlyRetirement: domain.EarlyRetirementConfig{PenaltyRate: 0.1},
		},
		Age:  age,
		Date: date,
	}
}

func TestWithdrawFIFOBasisConsumption(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{
				ID:          "brokerage",
				TaxType:     domain.TaxTypeTaxable,
				BasisMethod: domain.BasisFIFO,
				Balance:     300,
				BasisEntries: []domain.BasisEntry{
					{Date: time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 100},
					{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 100},
				},
			},
		},
	}
	ctx := newCtx(65, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{
		Kind:            domain.ActionWithdraw,
		SourceHoldingID: "brokerage",
		ResolvedAmount:  150,
	}
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 150, rec.ResolvedAmount, 1e-9)
	// FIFO: first lot of 100 fully consumed as basis, then 50 of the second
	// lot; capital gain = 150 - 150 = 0, since withdrawn amount <= basis.
	assert.InDelta(t, 0, rec.CapitalGains, 1e-9)
	assert.InDelta(t, 150, state.Holdings[0].Balance, 1e-9)
	assert.InDelta(t, 50, state.Holdings[0].TotalBasis(), 1e-9) // 50 left in the 2020 lot
}

func TestWithdrawTaxableAverageBasis(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{
				ID:          "h1",
				TaxType:     domain.TaxTypeTaxable,
				BasisMethod: domain.BasisAverage,
				Balance:     200,
				BasisEntries: []domain.BasisEntry{
					{Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 100},
				},
			},
		},
	}
	ctx := newCtx(65, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionWithdraw, SourceHoldingID: "h1", ResolvedAmount: 100}
	rec = taxlot.Execute(rec, state, ctx)

	// basisRatio = 100/200 = 0.5; basisUsed = 100*(100/200) = 50.
	assert.InDelta(t, 50, rec.CapitalGains, 1e-9)
	assert.InDelta(t, 50, rec.TaxFree, 1e-9)
	assert.InDelta(t, 100, state.Holdings[0].Balance, 1e-9)
	assert.InDelta(t, 50, state.Holdings[0].TotalBasis(), 1e-9)
}

func TestTraditionalWithdrawIsOrdinaryIncome(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{ID: "ira", TaxType: domain.TaxTypeTraditional, Balance: 50000},
		},
	}
	ctx := newCtx(65, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionWithdraw, SourceHoldingID: "ira", ResolvedAmount: 2000}
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 2000, rec.OrdinaryIncome, 1e-9)
	assert.InDelta(t, 2000, state.YearLedger.OrdinaryIncome, 1e-9)
	assert.InDelta(t, 0, rec.Penalty, 1e-9)
}

func TestRothSeasonedWithdrawalNoPenaltyUnder595(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{
				ID:      "roth",
				TaxType: domain.TaxTypeRoth,
				Balance: 10000,
				BasisEntries: []domain.BasisEntry{
					// 10 years old: well past the 60-month seasoning line.
					{Date: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC), Amount: 10000},
				},
			},
		},
	}
	ctx := newCtx(50, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionWithdraw, SourceHoldingID: "roth", ResolvedAmount: 5000}
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 5000, rec.TaxFree, 1e-9)
	assert.InDelta(t, 0, rec.Penalty, 1e-9)
	assert.InDelta(t, 0, state.YearLedger.Penalties, 1e-9)
}

func TestRothUnseasonedWithdrawalPenalizedUnder595(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{
				ID:      "roth",
				TaxType: domain.TaxTypeRoth,
				Balance: 10000,
				BasisEntries: []domain.BasisEntry{
					// 1 month old: not seasoned.
					{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), Amount: 10000},
				},
			},
		},
	}
	ctx := newCtx(50, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionWithdraw, SourceHoldingID: "roth", ResolvedAmount: 5000}
	rec = taxlot.Execute(rec, state, ctx)

	// base = max(0, W - seasonedBasis) = max(0, 5000-0) = 5000; penalty = 500.
	assert.InDelta(t, 500, rec.Penalty, 1e-9)
	assert.InDelta(t, 500, state.YearLedger.Penalties, 1e-9)
}

func TestProRataWithdrawalWeightsByBalance(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{ID: "a", TaxType: domain.TaxTypeTraditional, Balance: 300},
			{ID: "b", TaxType: domain.TaxTypeTraditional, Balance: 700},
		},
	}
	ctx := newCtx(65, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionWithdraw, ResolvedAmount: 100}
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 100, rec.ResolvedAmount, 1e-9)
	assert.InDelta(t, 270, state.Holdings[0].Balance, 1e-9) // 300 - 30
	assert.InDelta(t, 630, state.Holdings[1].Balance, 1e-9) // 700 - 70 (last absorbs remainder)
}

func TestRothConversionAtAge50(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{ID: "ira", TaxType: domain.TaxTypeTraditional, Balance: 50000},
			{ID: "roth", TaxType: domain.TaxTypeRoth, Balance: 0},
		},
	}
	convertDate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ctx := newCtx(50, convertDate)

	intent := domain.ActionIntent{
		Kind:            domain.ActionConvert,
		Amount:          10000,
		SourceHoldingID: "ira",
		TargetHoldingID: "roth",
		SkipPenalty:     true,
	}
	rec := taxlot.ResolveIntent(intent, state)
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 10000, rec.ResolvedAmount, 1e-9)
	assert.InDelta(t, 10000, state.YearLedger.OrdinaryIncome, 1e-9)
	assert.InDelta(t, 0, state.YearLedger.Penalties, 1e-9)
	require.Len(t, state.Holdings[1].BasisEntries, 1)
	assert.InDelta(t, 10000, state.Holdings[1].BasisEntries[0].Amount, 1e-9)
	assert.True(t, state.Holdings[1].BasisEntries[0].Date.Equal(convertDate))
}

func TestResolveIntentClampsToAvailability(t *testing.T) {
	state := &domain.SimulationState{
		Holdings: []*domain.HoldingState{
			{ID: "a", Balance: 40},
		},
	}
	rec := taxlot.ResolveIntent(domain.ActionIntent{Kind: domain.ActionWithdraw, Amount: 100}, state)
	assert.InDelta(t, 40, rec.ResolvedAmount, 1e-9)
}

func TestDepositAddsBasisEntryAndDebitsCash(t *testing.T) {
	state := &domain.SimulationState{
		CashAccounts: []*domain.CashAccountState{{ID: "cash", Balance: 1000}},
		Holdings:     []*domain.HoldingState{{ID: "h1", TaxType: domain.TaxTypeTaxable, Balance: 0}},
	}
	ctx := newCtx(40, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	rec := domain.ActionRecord{Kind: domain.ActionDeposit, TargetHoldingID: "h1", ResolvedAmount: 300}
	rec = taxlot.Execute(rec, state, ctx)

	assert.InDelta(t, 300, state.Holdings[0].Balance, 1e-9)
	assert.InDelta(t, 700, state.CashAccounts[0].Balance, 1e-9)
	require.Len(t, state.Holdings[0].BasisEntries, 1)
	assert.InDelta(t, 300, state.Holdings[0].BasisEntries[0].Amount, 1e-9)
}
