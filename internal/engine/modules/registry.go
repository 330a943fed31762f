package modules

import "github.com/rpgo/retirement-sim/internal/engine"

// All returns the fixed, deterministically-ordered core module set
// (§4.2). The same slice order drives every hook invocation for every
// run.
func All() []engine.Module {
	return []engine.Module{
		NewReturnsCore(),
		NewIncome(),
		NewSpending(),
		NewSocialSecurity(),
		NewPensions(),
		NewEvents(),
		NewRMD(),
		NewRothConversion(),
		NewRebalancing(),
		NewTaxes(),
	}
}
