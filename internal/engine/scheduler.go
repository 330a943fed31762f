package engine

import (
	"fmt"
	"sort"

	"github.com/rpgo/retirement-sim/internal/aggregate"
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/taxlot"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// Scheduler drives the month-by-month simulation loop against a fixed,
// ordered module registry (§4.3).
type Scheduler struct {
	registry *Registry
	log      Logger
}

// NewScheduler builds a scheduler for a fixed module registry. A nil logger
// defaults to NopLogger.
func NewScheduler(registry *Registry, log Logger) *Scheduler {
	if log == nil {
		log = NopLogger{}
	}
	return &Scheduler{registry: registry, log: log}
}

// Run executes the full month loop for one snapshot/settings pair and
// returns the accumulated SimulationResult (§4.3, §4.5).
func (s *Scheduler) Run(input domain.SimulationInput) (domain.SimulationResult, error) {
	snap := input.Snapshot
	settings := input.Settings

	primary := snap.PrimaryPerson()
	if primary == nil {
		return domain.SimulationResult{}, fmt.Errorf("resolve primary person: %w", domain.ErrEmptyPopulation)
	}

	for _, m := range s.registry.Modules() {
		if pb, ok := m.(PlanBuilder); ok {
			if err := pb.BuildPlan(snap, settings); err != nil {
				return domain.SimulationResult{}, fmt.Errorf("module %s build plan: %w", m.Name(), err)
			}
		}
	}

	state := domain.NewSimulationState(snap)

	result := domain.SimulationResult{}
	var yearAccum yearAccumulator
	yearAccum.reset()

	for month := 0; month < settings.Months; month += settings.StepMonths {
		ctx := s.buildContext(snap, settings, primary, month)

		if ctx.IsStartOfYear {
			state.YearLedger.Reset()
			yearAccum.reset()
			for _, m := range s.registry.Modules() {
				if h, ok := m.(StartOfYearHook); ok {
					h.OnStartOfYear(state, ctx)
				}
			}
		}

		for _, m := range s.registry.Modules() {
			if h, ok := m.(StartOfMonthHook); ok {
				h.OnStartOfMonth(state, ctx)
			}
		}

		var monthCashflows []domain.CashflowItem
		for _, m := range s.registry.Modules() {
			if cp, ok := m.(CashflowProvider); ok {
				flows := cp.GetCashflows(state, ctx)
				monthCashflows = append(monthCashflows, flows...)
			}
		}
		applyCashflows(state, monthCashflows)

		for _, m := range s.registry.Modules() {
			if ah, ok := m.(AfterCashflowsHook); ok {
				extra := ah.OnAfterCashflows(monthCashflows, state, ctx)
				applyCashflows(state, extra)
				monthCashflows = append(monthCashflows, extra...)
			}
		}

		var intents []domain.ActionIntent
		seq := 0
		for _, m := range s.registry.Modules() {
			if ip, ok := m.(IntentProvider); ok {
				for _, it := range ip.GetActionIntents(state, ctx) {
					it.SetSeq(seq)
					seq++
					intents = append(intents, it)
				}
			}
		}
		sort.SliceStable(intents, func(i, j int) bool {
			return intents[i].Priority < intents[j].Priority
		})

		actions := make([]domain.ActionRecord, 0, len(intents))
		for _, it := range intents {
			rec := taxlot.ResolveIntent(it, state)
			rec = taxlot.Execute(rec, state, ctx)
			actions = append(actions, rec)
		}

		for _, m := range s.registry.Modules() {
			if arh, ok := m.(ActionsResolvedHook); ok {
				own := actionsForSource(actions, m.Name())
				arh.OnActionsResolved(own, state, ctx)
			}
		}

		before := snapshotBalances(state)
		for _, m := range s.registry.Modules() {
			if h, ok := m.(EndOfMonthHook); ok {
				h.OnEndOfMonth(state, ctx)
			}
		}
		after := snapshotBalances(state)
		returns := buildMarketReturns(before, after)
		for _, m := range s.registry.Modules() {
			if h, ok := m.(MarketReturnsObserver); ok {
				h.OnMarketReturns(returns, state, ctx)
			}
		}

		if !settings.SummaryOnly {
			result.Explanations = append(result.Explanations, s.buildExplanation(month, ctx, state))
		}

		record := buildMonthlyRecord(month, ctx, state, monthCashflows, actions)
		result.MonthlyTimeline = append(result.MonthlyTimeline, record)
		yearAccum.add(record)

		state.RecordBalance()

		if ctx.IsEndOfYear {
			for _, m := range s.registry.Modules() {
				if h, ok := m.(EndOfYearHook); ok {
					h.OnEndOfYear(state, ctx)
				}
			}
			yr := yearAccum.toYearRecord(ctx, state)
			for _, m := range s.registry.Modules() {
				if gr, ok := m.(GuardrailFactorReporter); ok {
					if factor, has := gr.LastGuardrailFactor(); has {
						yr.GuardrailFactor = factor
						yr.HasGuardrailFactor = true
					}
				}
			}
			result.Timeline = append(result.Timeline, yr)
		}
	}

	minBal, maxBal := state.MinMaxBalance()
	result.Summary = aggregate.Summarize(result.MonthlyTimeline, result.Timeline, minBal, maxBal)
	return result, nil
}

func (s *Scheduler) buildContext(snap *domain.Snapshot, settings domain.Settings, primary *domain.Person, month int) *domain.SimulationContext {
	date := dateutil.AddMonths(settings.StartDate, month)
	return &domain.SimulationContext{
		Snapshot:      snap,
		Settings:      settings,
		MonthIndex:    month,
		YearIndex:     month / 12,
		Age:           dateutil.AgeInYearsAtDate(primary.DateOfBirth, date),
		Date:          date,
		DateISO:       dateutil.FormatISODate(date),
		IsStartOfYear: month%12 == 0,
		IsEndOfYear:   month%12 == 11 || month+1 >= settings.Months,
	}
}

func (s *Scheduler) buildExplanation(month int, ctx *domain.SimulationContext, state *domain.SimulationState) domain.MonthExplanation {
	expl := domain.MonthExplanation{MonthIndex: month, DateISO: ctx.DateISO}
	for _, m := range s.registry.Modules() {
		if ex, ok := m.(Explainer); ok {
			if e := ex.Explain(); e != nil {
				expl.Modules = append(expl.Modules, *e)
			}
		}
	}
	for _, ca := range state.CashAccounts {
		expl.Balances = append(expl.Balances, domain.AccountBalanceSnapshot{ID: ca.ID, IsCash: true, Balance: ca.Balance})
	}
	for _, h := range state.Holdings {
		bal := domain.AccountBalanceSnapshot{ID: h.ID, Balance: h.Balance}
		if h.TaxType == domain.TaxTypeRoth {
			seasoned := seasonedBasisForExplain(h, ctx)
			bal.SeasonedBasis = seasoned
			bal.UnseasonedBasis = h.TotalBasis() - seasoned
		}
		expl.Balances = append(expl.Balances, bal)
	}
	return expl
}

func seasonedBasisForExplain(h *domain.HoldingState, ctx *domain.SimulationContext) float64 {
	total := 0.0
	for _, e := range h.BasisEntries {
		if dateutil.MonthsBetween(e.Date, ctx.Date) >= 60 {
			total += e.Amount
		}
	}
	return total
}

// applyCashflows folds a batch of CashflowItems into the primary cash
// account (distributing a net outflow across accounts when the first is
// empty) and accumulates their tax fields into the year ledger (§4.3 step
// 5).
func applyCashflows(state *domain.SimulationState, flows []domain.CashflowItem) {
	for _, f := range flows {
		applyOneCashflow(state, f)
	}
}

func applyOneCashflow(state *domain.SimulationState, f domain.CashflowItem) {
	state.YearLedger.OrdinaryIncome += f.OrdinaryIncome
	state.YearLedger.CapitalGains += f.CapitalGains
	state.YearLedger.Deductions += f.Deductions
	state.YearLedger.TaxExemptIncome += f.TaxExemptIncome
	state.YearLedger.SocialSecurityBenefits += f.SocialSecurityBenefit

	if f.Category == domain.CategoryWork && f.Cash > 0 {
		state.YearLedger.EarnedIncome += f.Cash
	}
	if f.Category == domain.CategoryTax && f.Cash < 0 {
		state.YearLedger.TaxPaid += -f.Cash
	}

	if f.Cash >= 0 {
		if primary := state.PrimaryCashAccount(); primary != nil {
			primary.Balance += f.Cash
		}
		return
	}

	distributeOutflow(state, -f.Cash)
}

// distributeOutflow debits the first cash account; if it cannot cover the
// full amount, the remainder is drawn from subsequent cash accounts in
// order, and any still-unmet remainder overdraws the first account (§3
// "first cash account absorbs overdraft").
func distributeOutflow(state *domain.SimulationState, amount float64) {
	if len(state.CashAccounts) == 0 {
		return
	}
	first := state.CashAccounts[0]
	if first.Balance >= amount || len(state.CashAccounts) == 1 {
		first.Balance -= amount
		return
	}

	remaining := amount
	if first.Balance > 0 {
		remaining -= first.Balance
		first.Balance = 0
	}
	for _, ca := range state.CashAccounts[1:] {
		if remaining <= 0 {
			break
		}
		take := remaining
		if ca.Balance < take {
			take = ca.Balance
		}
		ca.Balance -= take
		remaining -= take
	}
	if remaining > 0 {
		first.Balance -= remaining
	}
}

func actionsForSource(actions []domain.ActionRecord, source string) []domain.ActionRecord {
	var out []domain.ActionRecord
	for _, a := range actions {
		if a.Source == source {
			out = append(out, a)
		}
	}
	return out
}

type balanceSnapshot struct {
	holdingBalances map[string]float64
}

func snapshotBalances(state *domain.SimulationState) balanceSnapshot {
	bs := balanceSnapshot{
		holdingBalances: make(map[string]float64, len(state.Holdings)),
	}
	for _, h := range state.Holdings {
		bs.holdingBalances[h.ID] = h.Balance
	}
	return bs
}

// buildMarketReturns derives a MarketReturn entry per holding from its
// before/after balance, as captured around the end-of-month hooks (§4.2
// returns-core, §4.3 step 9). A zero-rate entry is emitted if the before
// balance was zero to avoid a divide-by-zero.
func buildMarketReturns(before, after balanceSnapshot) []domain.MarketReturn {
	var out []domain.MarketReturn
	for id, b := range before.holdingBalances {
		a := after.holdingBalances[id]
		var rate float64
		if b != 0 {
			rate = (a - b) / b
		}
		out = append(out, domain.MarketReturn{HoldingID: id, Before: b, After: a, Rate: rate})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HoldingID < out[j].HoldingID })
	return out
}

func buildMonthlyRecord(month int, ctx *domain.SimulationContext, state *domain.SimulationState, flows []domain.CashflowItem, actions []domain.ActionRecord) domain.MonthlyRecord {
	rec := domain.MonthlyRecord{
		MonthIndex: month,
		DateISO:    ctx.DateISO,
		Age:        ctx.Age,
	}
	for _, f := range flows {
		switch f.Category {
		case domain.CategoryWork, domain.CategorySSA, domain.CategoryPension:
			if f.Cash > 0 {
				rec.Income += f.Cash
			}
		case domain.CategorySpendingNeed, domain.CategorySpendingWant, domain.CategorySpendingHealthcare:
			if f.Cash < 0 {
				rec.Spending += -f.Cash
			}
		case domain.CategoryTax:
			if f.Cash < 0 {
				rec.Taxes += -f.Cash
			}
		}
		rec.OrdinaryIncome += f.OrdinaryIncome
		rec.CapitalGains += f.CapitalGains
		rec.Deductions += f.Deductions
	}
	for _, a := range actions {
		switch a.Kind {
		case domain.ActionDeposit:
			rec.Contributions += a.ResolvedAmount
		case domain.ActionWithdraw:
			rec.Withdrawals += a.ResolvedAmount
		}
		rec.OrdinaryIncome += a.OrdinaryIncome
		rec.CapitalGains += a.CapitalGains
	}
	rec.CashBalance = state.TotalCash()
	rec.InvestmentBalance = state.TotalHoldings()
	rec.TotalBalance = state.TotalBalance()
	return rec
}


// yearAccumulator folds MonthlyRecords into one YearRecord, reset at the
// first month of each simulation year, i.e. every twelfth month counted
// from the start date (§4.3 step 13).
type yearAccumulator struct {
	income         float64
	spending       float64
	contributions  float64
	withdrawals    float64
	taxes          float64
	ordinaryIncome float64
	capitalGains   float64
	deductions     float64
}

func (y *yearAccumulator) reset() { *y = yearAccumulator{} }

func (y *yearAccumulator) add(r domain.MonthlyRecord) {
	y.income += r.Income
	y.spending += r.Spending
	y.contributions += r.Contributions
	y.withdrawals += r.Withdrawals
	y.taxes += r.Taxes
	y.ordinaryIncome += r.OrdinaryIncome
	y.capitalGains += r.CapitalGains
	y.deductions += r.Deductions
}

func (y *yearAccumulator) toYearRecord(ctx *domain.SimulationContext, state *domain.SimulationState) domain.YearRecord {
	return domain.YearRecord{
		Year:                    ctx.YearIndex,
		Age:                     ctx.Age,
		Income:                  y.income,
		Spending:                y.spending,
		Contributions:           y.contributions,
		Withdrawals:             y.withdrawals,
		Taxes:                   y.taxes,
		OrdinaryIncome:          y.ordinaryIncome,
		CapitalGains:            y.capitalGains,
		Deductions:              y.deductions,
		EndingCashBalance:       state.TotalCash(),
		EndingInvestmentBalance: state.TotalHoldings(),
		EndingTotalBalance:      state.TotalBalance(),
		DateISO:                 ctx.DateISO,
	}
}
