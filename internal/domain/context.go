package domain

import (
	"time"
)

// Settings are the derived simulation settings produced by the
// Simulation Input Builder (§4.1).
type Settings struct {
	StartDate  time.Time
	EndDate    time.Time
	Months     int
	StepMonths int

	// SummaryOnly skips per-month explanation assembly (§6, §8
	// "Summary-only equivalence").
	SummaryOnly bool

	// Seed, when non-nil, switches the returns-core module into
	// stochastic mode (§4.2 returns-core, §6 Randomness).
	Seed *uint64
}

// SimulationInput is the Simulation Input Builder's output (§4.1).
type SimulationInput struct {
	Snapshot *Snapshot
	Settings Settings
}

// SimulationContext is the immutable per-month context passed to every
// module hook (§3).
type SimulationContext struct {
	Snapshot    *Snapshot
	Settings    Settings
	MonthIndex  int
	YearIndex   int
	Age         float64
	Date        time.Time
	DateISO     string
	IsStartOfYear bool
	IsEndOfYear   bool
}
