// Package simbuild implements the Simulation Input Builder (§4.1):
// deriving a SimulationInput's Settings from a snapshot and a start
// date.
package simbuild

import (
	"fmt"
	"time"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// Build derives SimulationInput{snapshot, settings} from a snapshot and
// a start date (§4.1). It fails with ErrEmptyPopulation if the
// scenario's active person strategies resolve to no active people.
func Build(snap *domain.Snapshot, startDate time.Time) (domain.SimulationInput, error) {
	active := snap.ActivePeople()
	if len(active) == 0 {
		return domain.SimulationInput{}, fmt.Errorf("build simulation input: %w", domain.ErrEmptyPopulation)
	}

	endDate := active[0].DateOfBirth
	endDate = dateutil.AddYears(endDate, active[0].LifeExpectancy)
	for _, p := range active[1:] {
		candidate := dateutil.AddYears(p.DateOfBirth, p.LifeExpectancy)
		if candidate.After(endDate) {
			endDate = candidate
		}
	}

	months := dateutil.MonthsBetween(startDate, endDate)
	if months < 1 {
		months = 1
	}

	settings := domain.Settings{
		StartDate:  startDate,
		EndDate:    endDate,
		Months:     months,
		StepMonths: 1,
	}
	return domain.SimulationInput{Snapshot: snap, Settings: settings}, nil
}
