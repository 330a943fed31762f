package modules

import (
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// Income is the income/work module (§4.2 income/work): for each active
// work period overlapping the month it emits a salary/bonus cashflow and
// 401k/HSA contribution deposit intents, clamped to the snapshot's annual
// contribution limits.
type Income struct {
	*engine.ExplainRecorder

	limits domain.ContributionLimits

	// ytd401k/ytdHSA track this calendar year's employee 401k and HSA
	// contributions per person strategy id, reset at start of year.
	ytd401k map[string]float64
	ytdHSA  map[string]float64
}

func NewIncome() *Income {
	return &Income{
		ExplainRecorder: engine.NewExplainRecorder("income"),
		ytd401k:         make(map[string]float64),
		ytdHSA:          make(map[string]float64),
	}
}

func (i *Income) Name() string { return "income" }

func (i *Income) BuildPlan(snapshot *domain.Snapshot, settings domain.Settings) error {
	i.limits = snapshot.ContributionLimits
	return nil
}

func (i *Income) OnStartOfYear(state *domain.SimulationState, ctx *domain.SimulationContext) {
	i.ytd401k = make(map[string]float64)
	i.ytdHSA = make(map[string]float64)
}

func (i *Income) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	i.Reset()
	var flows []domain.CashflowItem
	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		for _, wp := range ps.WorkPeriods {
			if ctx.Date.Before(wp.StartDate) || ctx.Date.After(wp.EndDate) {
				continue
			}
			monthlySalary := (wp.AnnualSalary + wp.AnnualBonus) / 12
			if monthlySalary > 0 {
				flows = append(flows, domain.CashflowItem{
					Cash:           monthlySalary,
					Category:       domain.CategoryWork,
					OrdinaryIncome: monthlySalary,
					Source:         i.Name(),
				})
				i.AddCashflow("salary", monthlySalary)
			}
		}
	}
	return flows
}

func (i *Income) GetActionIntents(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.ActionIntent {
	var intents []domain.ActionIntent
	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		for _, wp := range ps.WorkPeriods {
			if ctx.Date.Before(wp.StartDate) || ctx.Date.After(wp.EndDate) {
				continue
			}
			employeeLimit := i.limits.Employee401kLimit
			if i.limits.CatchUpAge > 0 && int(ctx.Age) >= i.limits.CatchUpAge {
				employeeLimit += i.limits.Employee401kCatchUp
			}

			desired401k := (wp.AnnualSalary) * wp.Employee401kPercent / 12
			room := employeeLimit - i.ytd401k[ps.ID]
			applied401k := clampNonNegative(desired401k, room)
			if applied401k > 0 && wp.Traditional401kHoldingID != "" {
				i.ytd401k[ps.ID] += applied401k
				intents = append(intents, domain.ActionIntent{
					Kind:            domain.ActionDeposit,
					Amount:          applied401k,
					Priority:        10,
					TargetHoldingID: wp.Traditional401kHoldingID,
					Source:          i.Name(),
				})
				i.AddAction("employee_401k", applied401k)
			}

			employerMatch := wp.AnnualSalary * wp.EmployerMatchPercent / 12
			if employerMatch > 0 && wp.Traditional401kHoldingID != "" {
				intents = append(intents, domain.ActionIntent{
					Kind:            domain.ActionDeposit,
					Amount:          employerMatch,
					Priority:        10,
					TargetHoldingID: wp.Traditional401kHoldingID,
					FromCash:        false,
					FromCashSet:     true,
					Source:          i.Name(),
				})
				i.AddAction("employer_match", employerMatch)
			}

			hsaLimit := i.limits.HSAIndividualLimit
			if i.limits.HSACatchUpAge > 0 && int(ctx.Age) >= i.limits.HSACatchUpAge {
				hsaLimit += i.limits.HSACatchUpAmount
			}
			hsaRoom := hsaLimit - i.ytdHSA[ps.ID]
			appliedHSA := clampNonNegative(wp.HSAMonthlyContribution, hsaRoom)
			if appliedHSA > 0 && wp.HSAHoldingID != "" {
				i.ytdHSA[ps.ID] += appliedHSA
				intents = append(intents, domain.ActionIntent{
					Kind:            domain.ActionDeposit,
					Amount:          appliedHSA,
					Priority:        10,
					TargetHoldingID: wp.HSAHoldingID,
					Source:          i.Name(),
				})
				i.AddAction("hsa", appliedHSA)
			}
		}
	}
	return intents
}

func clampNonNegative(desired, room float64) float64 {
	if desired <= 0 || room <= 0 {
		return 0
	}
	if desired > room {
		return room
	}
	return desired
}
