package simbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

func twoPersonSnapshot() *domain.Snapshot {
	dob1, _ := dateutil.ParseISODate("1960-06-15")
	dob2, _ := dateutil.ParseISODate("1962-03-01")
	return &domain.Snapshot{
		ScenarioID: "base",
		Scenario:   domain.Scenario{PersonStrategyIDs: []string{"s1", "s2"}},
		People: []domain.Person{
			{ID: "p1", DateOfBirth: dob1, LifeExpectancy: 90, IsPrimary: true},
			{ID: "p2", DateOfBirth: dob2, LifeExpectancy: 95},
		},
		PersonStrategies: []domain.PersonStrategy{
			{ID: "s1", PersonID: "p1"},
			{ID: "s2", PersonID: "p2"},
		},
	}
}

func TestBuild_EndDateIsLatestLifeExpectancy(t *testing.T) {
	snap := twoPersonSnapshot()
	start, _ := dateutil.ParseISODate("2026-01-01")

	input, err := Build(snap, start)

	require.NoError(t, err)
	assert.Equal(t, 1, input.Settings.StepMonths)
	assert.Equal(t, start, input.Settings.StartDate)
	// p2 (born 1962 + 95y = 2057) outlives p1 (1960 + 90y = 2050).
	assert.Equal(t, 2057, input.Settings.EndDate.Year())
	assert.True(t, input.Settings.Months > 0)
}

func TestBuild_EmptyPopulationIsError(t *testing.T) {
	snap := &domain.Snapshot{Scenario: domain.Scenario{PersonStrategyIDs: nil}}
	start, _ := dateutil.ParseISODate("2026-01-01")

	_, err := Build(snap, start)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyPopulation)
}

func TestBuild_MonthsNeverGoesBelowOne(t *testing.T) {
	snap := twoPersonSnapshot()
	// Start date far past every life expectancy.
	start, _ := dateutil.ParseISODate("2099-01-01")

	input, err := Build(snap, start)

	require.NoError(t, err)
	assert.Equal(t, 1, input.Settings.Months)
}
