package modules

import (
	"math"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// RothConversion is the roth-conversion / roth-ladder module (§4.2
// roth-conversion): while the owner's age is in [startAge, endAge] it
// converts traditional balance to Roth in the last month of each
// simulation year (every twelfth month counted from the start date, and
// the final simulated month), sized to fill the
// remaining headroom under the target tax bracket (and, if configured,
// the next IRMAA tier), bounded by [minConversion, maxConversion].
type RothConversion struct {
	*engine.ExplainRecorder
}

func NewRothConversion() *RothConversion {
	return &RothConversion{ExplainRecorder: engine.NewExplainRecorder("roth-conversion")}
}

func (c *RothConversion) Name() string { return "roth-conversion" }

func (c *RothConversion) GetActionIntents(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.ActionIntent {
	c.Reset()
	if !ctx.IsEndOfYear {
		return nil
	}
	var intents []domain.ActionIntent

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		cfg := ps.RothConversion
		if !cfg.Enabled {
			continue
		}
		if ctx.Age < cfg.StartAge || ctx.Age > cfg.EndAge {
			continue
		}

		headroom := bracketHeadroom(ctx.Snapshot.FederalTaxPolicy, cfg.TargetTaxBracketTopRate, state.YearLedger.OrdinaryIncome)
		if cfg.RespectIRMAA {
			headroom = math.Min(headroom, irmaaHeadroom(ctx.Snapshot.IRMAATable, magiSoFar(state)))
		}

		amount := math.Min(cfg.MaxConversion, math.Max(0, headroom))
		if amount < cfg.MinConversion {
			continue
		}

		intents = append(intents, domain.ActionIntent{
			Kind:            domain.ActionConvert,
			Amount:          amount,
			Priority:        60,
			SourceHoldingID: cfg.SourceHoldingID,
			TargetHoldingID: cfg.TargetHoldingID,
			Source:          c.Name(),
		})
		c.AddAction(ps.ID, amount)
	}
	return intents
}

// bracketHeadroom returns the remaining room, against YTD taxable
// ordinary income, under the ceiling of the bracket whose rate matches
// targetTopRate (the next bracket's threshold, or unbounded if
// targetTopRate names the top bracket).
func bracketHeadroom(policy domain.FederalTaxPolicy, targetTopRate, ytdOrdinary float64) float64 {
	taxable := math.Max(0, ytdOrdinary-policy.StandardDeduction)
	ceiling := math.Inf(1)
	for i, b := range policy.OrdinaryBrackets {
		if b.Rate == targetTopRate && i+1 < len(policy.OrdinaryBrackets) {
			ceiling = policy.OrdinaryBrackets[i+1].Threshold
			break
		}
	}
	if math.IsInf(ceiling, 1) {
		return math.Inf(1)
	}
	return ceiling - taxable
}

func magiSoFar(state *domain.SimulationState) float64 {
	return state.YearLedger.OrdinaryIncome + state.YearLedger.CapitalGains + state.YearLedger.TaxExemptIncome
}

func irmaaHeadroom(table domain.IRMAATable, magi float64) float64 {
	for _, tier := range table.Tiers {
		if tier.MAGIThreshold > magi {
			return tier.MAGIThreshold - magi
		}
	}
	return math.Inf(1)
}
