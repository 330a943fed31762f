package modules

import (
	"math"
	"sort"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// Rebalancing is the rebalancing module (§4.2 rebalancing): at the
// configured frequency it compares each investment account's holding
// weights to the glidepath target for the current age and emits convert
// intents to move balance toward target, gated by drift threshold and
// minimum trade size.
type Rebalancing struct {
	*engine.ExplainRecorder

	// lastRebalanceMonth is allocated per instance but never read or
	// written; the quarterly/annual cadence is decided from the current
	// step's calendar month and start-of-year flag alone.
	lastRebalanceMonth map[string]int
}

func NewRebalancing() *Rebalancing {
	return &Rebalancing{
		ExplainRecorder:    engine.NewExplainRecorder("rebalancing"),
		lastRebalanceMonth: make(map[string]int),
	}
}

func (r *Rebalancing) Name() string { return "rebalancing" }

func (r *Rebalancing) GetActionIntents(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.ActionIntent {
	r.Reset()
	var intents []domain.ActionIntent

	for _, acct := range ctx.Snapshot.InvestmentAccounts {
		cfg := acct.Rebalancing
		if !cfg.Enabled || len(cfg.Glidepath) == 0 {
			continue
		}

		holdings := r.holdingsForAccount(state, acct.ID)
		if len(holdings) == 0 {
			continue
		}
		total := 0.0
		for _, h := range holdings {
			total += h.Balance
		}
		if total <= 0 {
			continue
		}

		targetWeights := glidepathWeights(cfg.Glidepath, ctx.Age)
		maxDrift := 0.0
		deltas := make(map[string]float64, len(holdings))
		for _, h := range holdings {
			target := targetWeights[h.ID] * total
			delta := target - h.Balance
			deltas[h.ID] = delta
			drift := math.Abs(delta) / total
			if drift > maxDrift {
				maxDrift = drift
			}
		}

		if !r.dueThisMonth(acct.ID, cfg, ctx, maxDrift) {
			continue
		}
		if maxDrift < cfg.DriftThreshold {
			continue
		}

		intents = append(intents, r.planTrades(holdings, deltas, cfg.MinTradeAmount)...)
		r.AddAction(acct.ID, maxDrift)
	}
	return intents
}

func (r *Rebalancing) holdingsForAccount(state *domain.SimulationState, accountID string) []*domain.HoldingState {
	var out []*domain.HoldingState
	for _, h := range state.Holdings {
		if h.InvestmentAccountID == accountID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Rebalancing) dueThisMonth(accountID string, cfg domain.RebalancingConfig, ctx *domain.SimulationContext, maxDrift float64) bool {
	switch cfg.Frequency {
	case domain.RebalanceMonthly:
		return true
	case domain.RebalanceQuarterly:
		return int(ctx.Date.Month())%3 == 1
	case domain.RebalanceAnnual:
		return ctx.IsStartOfYear
	case domain.RebalanceThreshold:
		return maxDrift >= cfg.DriftThreshold
	default:
		return false
	}
}

// glidepathWeights picks the configured weight map for the glidepath
// point nearest to (and not above) the current age, falling back to the
// earliest point if age precedes every knot.
func glidepathWeights(points []domain.GlidepathPoint, age float64) map[string]float64 {
	sorted := append([]domain.GlidepathPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	chosen := sorted[0]
	for _, p := range sorted {
		if p.Age <= age {
			chosen = p
		}
	}
	return chosen.Weights
}

// planTrades greedily matches the largest overweight holdings to the
// largest underweight holdings until every delta above minTradeAmount is
// satisfied (§4.2 rebalancing, "convert ... to move balance toward
// target").
func (r *Rebalancing) planTrades(holdings []*domain.HoldingState, deltas map[string]float64, minTradeAmount float64) []domain.ActionIntent {
	type leg struct {
		id     string
		amount float64
	}
	taxTypeOf := make(map[string]domain.HoldingTaxType, len(holdings))
	for _, h := range holdings {
		taxTypeOf[h.ID] = h.TaxType
	}

	var sources, targets []leg
	for _, h := range holdings {
		d := deltas[h.ID]
		if d < -minTradeAmount {
			sources = append(sources, leg{h.ID, -d})
		} else if d > minTradeAmount {
			targets = append(targets, leg{h.ID, d})
		}
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].amount > sources[j].amount })
	sort.Slice(targets, func(i, j int) bool { return targets[i].amount > targets[j].amount })

	var intents []domain.ActionIntent
	si, ti := 0, 0
	for si < len(sources) && ti < len(targets) {
		s, t := &sources[si], &targets[ti]
		trade := math.Min(s.amount, t.amount)
		if trade >= minTradeAmount {
			intent := domain.ActionIntent{
				Kind:            domain.ActionConvert,
				Amount:          trade,
				Priority:        70,
				SourceHoldingID: s.id,
				TargetHoldingID: t.id,
				Source:          r.Name(),
			}
			// A trade between two holdings of the same tax type is an
			// internal exchange, not a distribution: it recognizes no
			// income (§4.4 "a same-type rebalancing trade recognizes
			// none").
			if taxTypeOf[s.id] == taxTypeOf[t.id] {
				intent.TaxTreatment = domain.TreatmentTaxExempt
			}
			intents = append(intents, intent)
		}
		s.amount -= trade
		t.amount -= trade
		if s.amount < minTradeAmount {
			si++
		}
		if t.amount < minTradeAmount {
			ti++
		}
	}
	return intents
}
