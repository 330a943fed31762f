package modules

import (
	"math"
	"sort"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// Spending is the spending module (§4.2 spending): emits need/want/
// healthcare/long-term-care cashflows, inflated per the scenario's
// InflationRates, with an optional guardrail scaling the "want" cashflow.
type Spending struct {
	*engine.ExplainRecorder

	// guytonActiveCutMonths counts down the remaining months of an
	// active Guyton spending cut, persisting across years.
	guytonActiveCutMonths int

	lastFactor    float64
	hasLastFactor bool
}

func NewSpending() *Spending {
	return &Spending{ExplainRecorder: engine.NewExplainRecorder("spending")}
}

func (s *Spending) Name() string { return "spending" }

func (s *Spending) LastGuardrailFactor() (float64, bool) {
	return s.lastFactor, s.hasLastFactor
}

func (s *Spending) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	s.Reset()
	var flows []domain.CashflowItem

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		cfg := ps.Spending
		years := float64(ctx.MonthIndex) / 12

		need := inflate(cfg.MonthlyNeed, ctx.Snapshot.Scenario.InflationRates.RateFor(cfg.NeedInflation), years)
		want := inflate(cfg.MonthlyWant, ctx.Snapshot.Scenario.InflationRates.RateFor(cfg.WantInflation), years)
		healthcare := inflate(cfg.MonthlyHealthcare, ctx.Snapshot.Scenario.InflationRates.RateFor(cfg.HealthcareInflation), years)
		ltc := inflate(cfg.MonthlyLongTermCare, ctx.Snapshot.Scenario.InflationRates.RateFor(cfg.HealthcareInflation), years)

		want = s.applyGuardrail(cfg, state, need, want)

		if need > 0 {
			flows = append(flows, spendFlow(need, domain.CategorySpendingNeed, s.Name()))
			s.AddCashflow("need", need)
		}
		if want > 0 {
			flows = append(flows, spendFlow(want, domain.CategorySpendingWant, s.Name()))
			s.AddCashflow("want", want)
		}
		if healthcare > 0 {
			flows = append(flows, spendFlow(healthcare, domain.CategorySpendingHealthcare, s.Name()))
			s.AddCashflow("healthcare", healthcare)
		}
		if ltc > 0 {
			flows = append(flows, spendFlow(ltc, domain.CategorySpendingHealthcare, s.Name()))
			s.AddCashflow("long_term_care", ltc)
		}
	}
	return flows
}

func spendFlow(amount float64, category domain.CashflowCategory, source string) domain.CashflowItem {
	return domain.CashflowItem{Cash: -amount, Category: category, Source: source}
}

func inflate(base, annualRate, years float64) float64 {
	if base == 0 {
		return 0
	}
	return base * math.Pow(1+annualRate, years)
}

// applyGuardrail scales want spending per the configured guardrail
// (§4.2 spending, §8 examples 3-5). Returns the (possibly unchanged)
// want amount, and records the applied factor for LastGuardrailFactor.
func (s *Spending) applyGuardrail(cfg domain.SpendingConfig, state *domain.SimulationState, need, want float64) float64 {
	gr := cfg.Guardrail
	if gr.Type == domain.GuardrailNone || gr.Type == "" {
		s.hasLastFactor = false
		return want
	}

	portfolio := state.TotalBalance()

	switch gr.Type {
	case domain.GuardrailCapWants:
		monthlyBudget := portfolio * gr.WithdrawalRateLimit / 12
		remaining := math.Max(0, monthlyBudget-need)
		capped := math.Min(want, remaining)
		s.recordFactor(want, capped)
		return capped

	case domain.GuardrailPortfolioHealth:
		if gr.TargetPortfolioValue <= 0 {
			s.hasLastFactor = false
			return want
		}
		health := portfolio / gr.TargetPortfolioValue
		factor := interpolateHealthFactor(gr.HealthPoints, health)
		adjusted := want * factor
		s.lastFactor, s.hasLastFactor = factor, true
		return adjusted

	case domain.GuardrailGuyton:
		adjusted := s.applyGuytonCut(cfg, gr, portfolio, need, want)
		return adjusted

	default:
		s.hasLastFactor = false
		return want
	}
}

func (s *Spending) recordFactor(want, adjusted float64) {
	if want == 0 {
		s.hasLastFactor = false
		return
	}
	s.lastFactor = adjusted / want
	s.hasLastFactor = true
}

// interpolateHealthFactor linearly interpolates the want-scaling factor
// across the configured health/factor knots, sorted descending by health
// (§4.2 spending "portfolio_health"). Health above the highest knot uses
// that knot's factor; below the lowest uses the lowest's factor.
func interpolateHealthFactor(points []domain.GuardrailHealthPoint, health float64) float64 {
	if len(points) == 0 {
		return 1
	}
	sorted := append([]domain.GuardrailHealthPoint(nil), points...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Health > sorted[j].Health })

	if health >= sorted[0].Health {
		return sorted[0].Factor
	}
	last := sorted[len(sorted)-1]
	if health <= last.Health {
		return last.Factor
	}
	for i := 0; i < len(sorted)-1; i++ {
		hi, lo := sorted[i], sorted[i+1]
		if health <= hi.Health && health >= lo.Health {
			t := (health - hi.Health) / (lo.Health - hi.Health)
			return hi.Factor + t*(lo.Factor-hi.Factor)
		}
	}
	return last.Factor
}

// applyGuytonCut implements the Guyton-Klinger style capital-preservation
// rule (§4.2 spending "guyton", §8 example 5): while a cut is active it
// holds for guytonCutDurationMonths, counting down each month; otherwise
// it triggers a new cut when the current withdrawal rate exceeds the
// baseline (uninflated, configured) rate by more than
// guytonTriggerRateIncrease.
func (s *Spending) applyGuytonCut(cfg domain.SpendingConfig, gr domain.GuardrailConfig, portfolio, need, want float64) float64 {
	if s.guytonActiveCutMonths > 0 {
		s.guytonActiveCutMonths--
		adjusted := want * (1 - gr.GuytonAppliedCut)
		s.recordFactor(want, adjusted)
		return adjusted
	}

	if gr.TargetPortfolioValue <= 0 || portfolio <= 0 {
		s.hasLastFactor = false
		return want
	}
	baselineRate := (cfg.MonthlyNeed + cfg.MonthlyWant) / gr.TargetPortfolioValue
	currentRate := (need + want) / portfolio

	if baselineRate > 0 && currentRate > baselineRate*(1+gr.GuytonTriggerRateIncrease) {
		s.guytonActiveCutMonths = gr.GuytonCutDurationMonths
		s.guytonActiveCutMonths--
		adjusted := want * (1 - gr.GuytonAppliedCut)
		s.recordFactor(want, adjusted)
		return adjusted
	}

	s.hasLastFactor = false
	return want
}
