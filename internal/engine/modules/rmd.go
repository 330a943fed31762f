package modules

import (
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// RMD is the required-minimum-distribution module (§4.2 rmd): at the
// start of the year following the owner reaching startAge, it computes
// the required distribution against end-of-prior-year balances of the
// configured account types and withdraws it as ordinary income with the
// early-withdrawal penalty waived.
type RMD struct {
	*engine.ExplainRecorder

	// ownerOfAccount maps an investment account id to its owning person
	// id, built once in BuildPlan.
	ownerOfAccount map[string]string

	// priorYearEndBalance snapshots each holding's balance as of the
	// last OnEndOfYear call, the base the next January's RMD is
	// computed against.
	priorYearEndBalance map[string]float64

	// requiredThisYear holds this year's computed RMD per person
	// strategy id, consumed by GetActionIntents in January.
	requiredThisYear map[string]float64
}

func NewRMD() *RMD {
	return &RMD{
		ExplainRecorder:     engine.NewExplainRecorder("rmd"),
		ownerOfAccount:      make(map[string]string),
		priorYearEndBalance: make(map[string]float64),
		requiredThisYear:    make(map[string]float64),
	}
}

func (r *RMD) Name() string { return "rmd" }

func (r *RMD) BuildPlan(snapshot *domain.Snapshot, settings domain.Settings) error {
	for _, acct := range snapshot.InvestmentAccounts {
		r.ownerOfAccount[acct.ID] = acct.OwnerID
	}
	return nil
}

func (r *RMD) OnEndOfYear(state *domain.SimulationState, ctx *domain.SimulationContext) {
	for _, h := range state.Holdings {
		r.priorYearEndBalance[h.ID] = h.Balance
	}
}

func (r *RMD) OnStartOfYear(state *domain.SimulationState, ctx *domain.SimulationContext) {
	r.requiredThisYear = make(map[string]float64)

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		cfg := ps.RMD
		if !cfg.Enabled {
			continue
		}
		person := ctx.Snapshot.PersonByID(ps.PersonID)
		if person == nil {
			continue
		}
		age := dateutil.AgeInYearsAtDate(person.DateOfBirth, ctx.Date)
		if age < float64(cfg.StartAge) {
			continue
		}

		qualifying := r.qualifyingHoldings(state, ps.PersonID, cfg.AccountTypes)
		balance := 0.0
		for _, h := range qualifying {
			balance += r.priorYearEndBalance[h.ID]
		}
		if balance <= 0 {
			continue
		}
		divisor, ok := ctx.Snapshot.RMDTable.DivisorForAge(int(age))
		if !ok || divisor <= 0 {
			continue
		}
		r.requiredThisYear[ps.ID] = balance / divisor
	}
}

func (r *RMD) qualifyingHoldings(state *domain.SimulationState, ownerPersonID string, types []domain.HoldingTaxType) []*domain.HoldingState {
	var out []*domain.HoldingState
	for _, h := range state.HoldingsByAccountType(types) {
		if r.ownerOfAccount[h.InvestmentAccountID] != ownerPersonID {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (r *RMD) GetActionIntents(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.ActionIntent {
	r.Reset()
	if !ctx.IsStartOfYear {
		return nil
	}
	var intents []domain.ActionIntent

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		required := r.requiredThisYear[ps.ID]
		if required <= 0 {
			continue
		}
		cfg := ps.RMD
		qualifying := r.qualifyingHoldings(state, ps.PersonID, cfg.AccountTypes)
		total := 0.0
		for _, h := range qualifying {
			total += r.priorYearEndBalance[h.ID]
		}
		if total <= 0 {
			continue
		}

		applied := 0.0
		for i, h := range qualifying {
			var share float64
			if i == len(qualifying)-1 {
				share = required - applied
			} else {
				share = r.priorYearEndBalance[h.ID] / total * required
			}
			if share <= 0 {
				continue
			}
			applied += share
			intents = append(intents, domain.ActionIntent{
				Kind:            domain.ActionWithdraw,
				Amount:          share,
				Priority:        5,
				SourceHoldingID: h.ID,
				SkipPenalty:     true,
				TaxTreatment:    domain.TreatmentOrdinary,
				Source:          r.Name(),
			})
		}
		r.AddAction("required_distribution", required)

		if cfg.ExcessHandling != domain.RMDExcessSpend && cfg.ExcessTargetHoldingID != "" {
			intents = append(intents, domain.ActionIntent{
				Kind:            domain.ActionDeposit,
				Amount:          required,
				Priority:        50,
				TargetHoldingID: cfg.ExcessTargetHoldingID,
				FromCash:        true,
				FromCashSet:     true,
				Source:          r.Name(),
			})
		}
	}
	return intents
}
