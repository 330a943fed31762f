package engine

import "github.com/rpgo/retirement-sim/internal/domain"

// Module is the one method every simulation module must implement
// (§4.2). Every other hook is optional; the scheduler discovers which
// hooks a module implements via the interfaces below and type-asserts
// against them, so a module that only cares about end-of-month returns
// need not stub out the other nine hooks (§9 "Polymorphism over module
// kinds": a tagged-union-by-capability, expressed in Go as a family of
// single-method interfaces rather than one interface with empty
// default bodies).
type Module interface {
	Name() string
}

// PlanBuilder precomputes schedules once, before the month loop starts.
type PlanBuilder interface {
	BuildPlan(snapshot *domain.Snapshot, settings domain.Settings) error
}

// StartOfYearHook runs annual resets (contribution counters, RMD
// snapshots) at the first month of each year.
type StartOfYearHook interface {
	OnStartOfYear(state *domain.SimulationState, ctx *domain.SimulationContext)
}

// StartOfMonthHook runs pre-cashflow preparation each month.
type StartOfMonthHook interface {
	OnStartOfMonth(state *domain.SimulationState, ctx *domain.SimulationContext)
}

// CashflowProvider emits income/spending flows that do not require a
// balance-sourced withdrawal.
type CashflowProvider interface {
	GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem
}

// AfterCashflowsHook emits reactive flows (e.g. paying down a known tax
// liability) after the base flows for the month have been applied.
type AfterCashflowsHook interface {
	OnAfterCashflows(cashflows []domain.CashflowItem, state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem
}

// IntentProvider emits deposit/withdraw/convert intents for the month.
type IntentProvider interface {
	GetActionIntents(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.ActionIntent
}

// ActionsResolvedHook is notified of a module's own resolved actions
// after execution, for post-action accounting.
type ActionsResolvedHook interface {
	OnActionsResolved(actions []domain.ActionRecord, state *domain.SimulationState, ctx *domain.SimulationContext)
}

// EndOfMonthHook runs end-of-month bookkeeping (market returns,
// accruals).
type EndOfMonthHook interface {
	OnEndOfMonth(state *domain.SimulationState, ctx *domain.SimulationContext)
}

// MarketReturnsObserver is notified of the month's captured market
// returns, built from the returns-core module's before/after balances.
type MarketReturnsObserver interface {
	OnMarketReturns(returns []domain.MarketReturn, state *domain.SimulationState, ctx *domain.SimulationContext)
}

// EndOfYearHook runs annual finalization (taxes due, MAGI write, RMD
// finalization) at the last month of the year.
type EndOfYearHook interface {
	OnEndOfYear(state *domain.SimulationState, ctx *domain.SimulationContext)
}

// Explainer exposes a writable slot for per-month inputs/checkpoints;
// the scheduler reads it once per month, after all hooks have run, when
// it assembles the month's explanation (skipped in SummaryOnly mode).
// The scheduler does not reset it; each module clears its own slot from
// its hooks (§4.3 step 10).
type Explainer interface {
	Explain() *domain.ModuleRunExplanation
}

// GuardrailFactorReporter is implemented by the spending module when a
// guardrail is configured; the scheduler reads it back at the last month
// of the year to populate YearRecord.GuardrailFactor (§9 Open Question on
// guardrail factor stats).
type GuardrailFactorReporter interface {
	LastGuardrailFactor() (factor float64, ok bool)
}
