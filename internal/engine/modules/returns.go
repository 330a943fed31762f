package modules

import (
	"math"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// ReturnsCore applies the monthly market return to every holding and
// monthly interest accrual to every cash account (§4.2 returns-core). In
// deterministic mode (no seed) it applies the holding's configured
// returnRate/12 exactly; in stochastic mode it draws from a per-holding
// Normal(returnRate/12, returnStdDev/√12) seeded PRNG stream consumed in a
// fixed, holding-id-ascending order for determinism (§6 Randomness).
type ReturnsCore struct {
	*engine.ExplainRecorder

	src        rand.Source
	stochastic bool
}

// NewReturnsCore constructs the module; BuildPlan wires the seed once
// settings are known.
func NewReturnsCore() *ReturnsCore {
	return &ReturnsCore{ExplainRecorder: engine.NewExplainRecorder("returns-core")}
}

func (r *ReturnsCore) Name() string { return "returns-core" }

func (r *ReturnsCore) BuildPlan(snapshot *domain.Snapshot, settings domain.Settings) error {
	if settings.Seed != nil {
		r.stochastic = true
		r.src = rand.NewSource(*settings.Seed)
	}
	return nil
}

// OnEndOfMonth applies returns/interest; the scheduler captures
// before/after balances around this hook to build the month's
// MarketReturn list, so this module does not emit one itself.
func (r *ReturnsCore) OnEndOfMonth(state *domain.SimulationState, ctx *domain.SimulationContext) {
	r.Reset()

	holdings := append([]*domain.HoldingState(nil), state.Holdings...)
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].ID < holdings[j].ID })

	for _, h := range holdings {
		if h.Balance == 0 {
			continue
		}
		monthlyRate := h.ReturnRate / 12
		if r.stochastic {
			normal := distuv.Normal{Mu: h.ReturnRate / 12, Sigma: h.ReturnStdDev / math.Sqrt(12), Src: r.src}
			monthlyRate = normal.Rand()
		}
		delta := h.Balance * monthlyRate
		h.Balance += delta
		r.AddMarket(h.ID, delta)
	}

	for _, ca := range state.CashAccounts {
		delta := ca.Balance * ca.InterestRate / 12
		ca.Balance += delta
		r.AddMarket(ca.ID, delta)
	}
}
