package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
)

func eventsSnapshot(ev domain.EventConfig) *domain.Snapshot {
	return &domain.Snapshot{
		Scenario:         domain.Scenario{PersonStrategyIDs: []string{"s1"}},
		PersonStrategies: []domain.PersonStrategy{{ID: "s1", Events: []domain.EventConfig{ev}}},
	}
}

func TestEvents_FiresOnlyInItsMonth(t *testing.T) {
	snap := eventsSnapshot(domain.EventConfig{
		ID: "e1", Date: mustDate("2027-06-15"), Amount: 5000,
		Category: domain.CategoryEvent, TaxTreatment: domain.TreatmentCapitalGains,
	})
	e := NewEvents()

	before := e.GetCashflows(nil, &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-05-01")})
	assert.Empty(t, before)

	during := e.GetCashflows(nil, &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-06-01")})
	require.Len(t, during, 1)
	assert.InDelta(t, 5000, during[0].Cash, 0.01)
	assert.InDelta(t, 5000, during[0].CapitalGains, 0.01)
	assert.Equal(t, domain.CategoryEvent, during[0].Category)
}

func TestEvents_NeverFiresTwice(t *testing.T) {
	snap := eventsSnapshot(domain.EventConfig{
		ID: "e1", Date: mustDate("2027-06-15"), Amount: 5000, Category: domain.CategoryEvent,
	})
	e := NewEvents()

	first := e.GetCashflows(nil, &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-06-01")})
	require.Len(t, first, 1)

	second := e.GetCashflows(nil, &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-06-01")})
	assert.Empty(t, second)
}

func TestEvents_NegativeAmountRecognizesNoIncome(t *testing.T) {
	snap := eventsSnapshot(domain.EventConfig{
		ID: "e1", Date: mustDate("2027-06-15"), Amount: -2000,
		Category: domain.CategoryEvent, TaxTreatment: domain.TreatmentOrdinary,
	})
	e := NewEvents()

	flows := e.GetCashflows(nil, &domain.SimulationContext{Snapshot: snap, Date: mustDate("2027-06-01")})

	require.Len(t, flows, 1)
	assert.InDelta(t, -2000, flows[0].Cash, 0.01)
	assert.Zero(t, flows[0].OrdinaryIncome)
}
