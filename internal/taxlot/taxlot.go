// Package taxlot implements the tax-lot and early-penalty accounting that
// turns a resolved ActionIntent into dollars moved, basis consumed, and
// ordinary/capital-gains/penalty amounts credited to the year ledger (§4.4).
//
// Every entry point takes the live SimulationState and SimulationContext and
// mutates the former in place; callers (the engine's month scheduler) are
// responsible for sequencing calls in priority-then-insertion order.
package taxlot

import (
	"sort"
	"time"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// seasoningMonths is the Roth basis seasoning window: contributions older
// than this are withdrawable penalty-free before 59½.
const seasoningMonths = 60

// earlyPenaltyAge is the age below which early-withdrawal penalties apply.
const earlyPenaltyAge = 59.5

// ResolveIntent clamps a withdraw intent's requested amount to total
// available holding balance; deposit and convert intents pass through
// unchanged (§4.4 "Intent resolution").
func ResolveIntent(intent domain.ActionIntent, state *domain.SimulationState) domain.ActionRecord {
	rec := domain.ActionRecord{
		Kind:            intent.Kind,
		RequestedAmount: intent.Amount,
		SourceHoldingID: intent.SourceHoldingID,
		TargetHoldingID: intent.TargetHoldingID,
		TaxTreatment:    intent.TaxTreatment,
		SkipPenalty:     intent.SkipPenalty,
		FromCash:        intent.FromCash,
		FromCashSet:     intent.FromCashSet,
		Source:          intent.Source,
	}
	switch intent.Kind {
	case domain.ActionWithdraw:
		available := totalHoldingsBalance(state)
		rec.ResolvedAmount = min(intent.Amount, available)
	default:
		rec.ResolvedAmount = intent.Amount
	}
	return rec
}

func totalHoldingsBalance(state *domain.SimulationState) float64 {
	total := 0.0
	for _, h := range state.Holdings {
		total += h.Balance
	}
	return total
}

// Execute applies a resolved ActionRecord to state, dispatching by kind
// (§4.4). It returns the record with its tax/penalty decomposition filled in
// and its ResolvedAmount adjusted down if execution could not fully satisfy
// it (e.g. a single named holding has less balance than requested).
func Execute(rec domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext) domain.ActionRecord {
	switch rec.Kind {
	case domain.ActionWithdraw:
		return executeWithdraw(rec, state, ctx)
	case domain.ActionDeposit:
		return executeDeposit(rec, state, ctx)
	case domain.ActionConvert:
		return executeConvert(rec, state, ctx)
	default:
		return rec
	}
}

// executeWithdraw routes to a single named holding or spreads pro-rata
// across all holdings when no source is specified (§4.4).
func executeWithdraw(rec domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext) domain.ActionRecord {
	if rec.SourceHoldingID != "" {
		h := state.HoldingByID(rec.SourceHoldingID)
		if h == nil {
			rec.ResolvedAmount = 0
			return rec
		}
		applied, decomp := withdrawFromHolding(h, rec.ResolvedAmount, rec.TaxTreatment, rec.SkipPenalty, state, ctx)
		rec.ResolvedAmount = applied
		addDecomposition(&rec, decomp)
		creditCash(state, applied)
		return rec
	}
	return withdrawProRata(rec, state, ctx)
}

// creditCash deposits a withdrawal's proceeds into the primary cash
// account; conversions skip this since the proceeds move holding-to-
// holding instead (§4.4).
func creditCash(state *domain.SimulationState, amount float64) {
	if amount <= 0 {
		return
	}
	if cash := state.PrimaryCashAccount(); cash != nil {
		cash.Balance += amount
	}
}

// withdrawProRata spreads a withdrawal across every holding weighted by
// current balance; the last holding visited absorbs the rounding remainder
// (§4.4, §8 "Pro-rata split").
func withdrawProRata(rec domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext) domain.ActionRecord {
	total := totalHoldingsBalance(state)
	want := min(rec.ResolvedAmount, total)
	if want <= 0 || total <= 0 {
		rec.ResolvedAmount = 0
		return rec
	}

	appliedSoFar := 0.0
	var decomp decomposition
	for i, h := range state.Holdings {
		if h.Balance <= 0 {
			continue
		}
		var share float64
		if i == len(state.Holdings)-1 {
			share = want - appliedSoFar
		} else {
			share = h.Balance / total * want
		}
		if share <= 0 {
			continue
		}
		applied, d := withdrawFromHolding(h, share, rec.TaxTreatment, rec.SkipPenalty, state, ctx)
		appliedSoFar += applied
		decomp.add(d)
	}
	rec.ResolvedAmount = appliedSoFar
	addDecomposition(&rec, decomp)
	creditCash(state, appliedSoFar)
	return rec
}

type decomposition struct {
	ordinary     float64
	capitalGains float64
	taxFree      float64
	penalty      float64
}

func (d *decomposition) add(o decomposition) {
	d.ordinary += o.ordinary
	d.capitalGains += o.capitalGains
	d.taxFree += o.taxFree
	d.penalty += o.penalty
}

func addDecomposition(rec *domain.ActionRecord, d decomposition) {
	rec.OrdinaryIncome += d.ordinary
	rec.CapitalGains += d.capitalGains
	rec.TaxFree += d.taxFree
	rec.Penalty += d.penalty
}

// withdrawFromHolding is the single-holding withdraw routine (§4.4). It
// clamps to available balance, consumes basis per the holding's tax
// treatment, and accrues any early-withdrawal penalty into the year ledger.
func withdrawFromHolding(h *domain.HoldingState, amount float64, override domain.TaxTreatment, skipPenalty bool, state *domain.SimulationState, ctx *domain.SimulationContext) (float64, decomposition) {
	w := min(amount, h.Balance)
	if w <= 0 {
		return 0, decomposition{}
	}

	var seasonedBasis float64
	if h.TaxType == domain.TaxTypeRoth {
		seasonedBasis = seasonedBasisAsOf(h, ctx.Date)
	}

	h.Balance -= w

	var d decomposition
	switch {
	case override == domain.TreatmentOrdinary:
		d.ordinary = w
		state.YearLedger.OrdinaryIncome += w
	case override == domain.TreatmentCapitalGains:
		d.capitalGains = w
		state.YearLedger.CapitalGains += w
	case override == domain.TreatmentTaxExempt:
		// A same-type rebalancing trade still consumes basis per the
		// holding's own method, it just recognizes no income from it.
		switch h.TaxType {
		case domain.TaxTypeTaxable:
			consumeTaxableBasis(h, w)
		case domain.TaxTypeRoth:
			consumeBasisFIFO(h, w)
		}
		d.taxFree = w
	default:
		switch h.TaxType {
		case domain.TaxTypeTaxable:
			basisUsed := consumeTaxableBasis(h, w)
			gain := max(0, w-basisUsed)
			d.capitalGains = gain
			d.taxFree = w - gain
			state.YearLedger.CapitalGains += gain
		case domain.TaxTypeTraditional:
			d.ordinary = w
			state.YearLedger.OrdinaryIncome += w
		case domain.TaxTypeRoth:
			consumeBasisFIFO(h, w)
			d.taxFree = w
		case domain.TaxTypeHSA:
			d.taxFree = w
		}
	}

	if ctx.Age < earlyPenaltyAge && !skipPenalty {
		var base float64
		switch h.TaxType {
		case domain.TaxTypeTraditional:
			base = w
		case domain.TaxTypeRoth:
			base = max(0, w-seasonedBasis)
		}
		if base > 0 {
			penalty := base * ctx.Snapshot.EarlyRetirement.PenaltyRate
			d.penalty = penalty
			state.YearLedger.Penalties += penalty
		}
	}

	return w, d
}

// seasonedBasisAsOf sums basis entries at least seasoningMonths old as of
// the given date (§4.4, §8 "Roth seasoning").
func seasonedBasisAsOf(h *domain.HoldingState, asOf time.Time) float64 {
	total := 0.0
	for _, e := range h.BasisEntries {
		if dateutil.MonthsBetween(e.Date, asOf) >= seasoningMonths {
			total += e.Amount
		}
	}
	return total
}

// consumeTaxableBasis reduces a taxable holding's basis entries per its
// configured method and returns the total basis consumed (§4.4).
func consumeTaxableBasis(h *domain.HoldingState, w float64) float64 {
	switch h.BasisMethod {
	case domain.BasisAverage:
		return consumeAverageBasis(h, w)
	case domain.BasisLIFO:
		return consumeBasisOrdered(h, w, false)
	default:
		return consumeBasisOrdered(h, w, true)
	}
}

// consumeAverageBasis scales every basis entry down by the same ratio as
// the holding's balance, per the average-cost method (§4.4).
func consumeAverageBasis(h *domain.HoldingState, w float64) float64 {
	startBal := h.Balance + w
	if startBal <= 0 {
		return 0
	}
	totalBasis := h.TotalBasis()
	basisUsed := totalBasis * (w / startBal)
	ratio := (startBal - w) / startBal
	for i := range h.BasisEntries {
		h.BasisEntries[i].Amount *= ratio
	}
	return basisUsed
}

// consumeBasisOrdered sorts entries by date (ascending for FIFO, descending
// for LIFO) and consumes amount w sequentially, returning total basis used.
func consumeBasisOrdered(h *domain.HoldingState, w float64, ascending bool) float64 {
	entries := h.BasisEntries
	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return entries[i].Date.Before(entries[j].Date)
		}
		return entries[i].Date.After(entries[j].Date)
	})

	used := 0.0
	remaining := w
	kept := entries[:0]
	for _, e := range entries {
		if remaining <= 0 {
			kept = append(kept, e)
			continue
		}
		if e.Amount <= remaining {
			used += e.Amount
			remaining -= e.Amount
			continue
		}
		used += remaining
		e.Amount -= remaining
		remaining = 0
		kept = append(kept, e)
	}
	h.BasisEntries = kept
	return used
}

// consumeBasisFIFO is the Roth pure-basis consumption routine: oldest
// entries first, no tax effect (§4.4).
func consumeBasisFIFO(h *domain.HoldingState, w float64) {
	consumeBasisOrdered(h, w, true)
}

// executeDeposit credits a holding (appending a fresh basis entry dated to
// the current month) or, with no target, the primary cash account (§4.4).
func executeDeposit(rec domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext) domain.ActionRecord {
	amount := rec.ResolvedAmount
	if amount <= 0 {
		return rec
	}

	if rec.TargetHoldingID == "" {
		if cash := state.PrimaryCashAccount(); cash != nil {
			cash.Balance += amount
		}
		return rec
	}

	// fromCash defaults true; only an explicit fromCashSet&&!FromCash skips
	// debiting cash (§4.4 "Deposits").
	debitCash := !(rec.FromCashSet && !rec.FromCash)
	if debitCash {
		if cash := state.PrimaryCashAccount(); cash != nil {
			cash.Balance -= amount
		}
	}
	if h := state.HoldingByID(rec.TargetHoldingID); h != nil {
		h.Balance += amount
		h.BasisEntries = append(h.BasisEntries, domain.BasisEntry{Date: ctx.Date, Amount: amount})
	}
	return rec
}

// executeConvert withdraws from the source (defaulting to the first
// traditional holding, for a bare Roth conversion) with no penalty, then
// deposits the applied amount into the target (defaulting to the first
// roth holding), starting a fresh seasoning clock (§4.4). The source
// holding's own tax type drives the tax treatment unless the intent sets
// one explicitly, so a Traditional->Roth convert recognizes ordinary
// income while a same-type rebalancing trade recognizes none.
func executeConvert(rec domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext) domain.ActionRecord {
	src := rec.SourceHoldingID
	if src == "" {
		if h := firstHoldingOfType(state, domain.TaxTypeTraditional); h != nil {
			src = h.ID
		}
	}
	h := state.HoldingByID(src)
	if h == nil {
		rec.ResolvedAmount = 0
		return rec
	}
	applied, decomp := withdrawFromHolding(h, rec.ResolvedAmount, rec.TaxTreatment, true, state, ctx)
	rec.ResolvedAmount = applied
	addDecomposition(&rec, decomp)

	if applied <= 0 {
		return rec
	}

	tgt := rec.TargetHoldingID
	if tgt == "" {
		if th := firstHoldingOfType(state, domain.TaxTypeRoth); th != nil {
			tgt = th.ID
		}
	}
	if th := state.HoldingByID(tgt); th != nil {
		th.Balance += applied
		th.BasisEntries = append(th.BasisEntries, domain.BasisEntry{Date: ctx.Date, Amount: applied})
	}
	return rec
}

func firstHoldingOfType(state *domain.SimulationState, t domain.HoldingTaxType) *domain.HoldingState {
	for _, h := range state.Holdings {
		if h.TaxType == t {
			return h
		}
	}
	return nil
}
