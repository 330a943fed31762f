package modules

import (
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// SocialSecurity is the social-security module (§4.2 social-security):
// starting at each person's configured start date it pays a monthly
// benefit as cash, a fraction of which counts as ordinary income per the
// provisional-income taxability formula.
type SocialSecurity struct {
	*engine.ExplainRecorder

	// ytdOtherIncome is a snapshot of the household's non-SS ordinary
	// and tax-exempt income taken at the start of each year, used as the
	// full-year estimate for this year's provisional-income test. The
	// first year with no history defaults to zero other income.
	ytdOtherIncome float64
}

func NewSocialSecurity() *SocialSecurity {
	return &SocialSecurity{ExplainRecorder: engine.NewExplainRecorder("social-security")}
}

func (s *SocialSecurity) Name() string { return "social-security" }

func (s *SocialSecurity) OnStartOfYear(state *domain.SimulationState, ctx *domain.SimulationContext) {
	// Captures last year's fully-accumulated ledger before Reset runs
	// this same step, approximating "other income" for this year's
	// provisional-income test with last year's actuals.
	s.ytdOtherIncome = state.YearLedger.OrdinaryIncome + state.YearLedger.TaxExemptIncome - state.YearLedger.SocialSecurityBenefits
}

func (s *SocialSecurity) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	s.Reset()
	var flows []domain.CashflowItem

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		cfg := ps.SocialSecurity
		if !cfg.Enabled || ctx.Date.Before(cfg.StartDate) {
			continue
		}
		years := float64(dateutil.MonthsBetween(cfg.StartDate, ctx.Date)) / 12
		benefit := inflate(cfg.MonthlyBenefit, ctx.Snapshot.Scenario.InflationRates.RateFor(cfg.COLA), years)
		if benefit <= 0 {
			continue
		}

		taxableFraction := s.taxableFraction(ctx.Snapshot, benefit*12)
		flows = append(flows, domain.CashflowItem{
			Cash:                  benefit,
			Category:              domain.CategorySSA,
			OrdinaryIncome:        benefit * taxableFraction,
			SocialSecurityBenefit: benefit,
			Source:                s.Name(),
		})
		s.AddCashflow("benefit", benefit)
		s.SetInput("taxable_fraction", taxableFraction)
	}
	return flows
}

// taxableFraction applies the IRS provisional-income worksheet: up to
// 50% of the benefit is taxable once provisional income exceeds
// threshold1, up to 85% once it exceeds threshold2.
func (s *SocialSecurity) taxableFraction(snap *domain.Snapshot, annualBenefit float64) float64 {
	if annualBenefit <= 0 {
		return 0
	}
	thresholds := snap.ProvisionalIncomeThresholdFor()
	provisionalIncome := s.ytdOtherIncome + 0.5*annualBenefit

	var taxable float64
	switch {
	case provisionalIncome <= thresholds.Threshold1:
		taxable = 0
	case provisionalIncome <= thresholds.Threshold2:
		taxable = min(0.5*annualBenefit, 0.5*(provisionalIncome-thresholds.Threshold1))
	default:
		tier1 := min(0.5*annualBenefit, 0.5*(thresholds.Threshold2-thresholds.Threshold1))
		taxable = min(0.85*annualBenefit, tier1+0.85*(provisionalIncome-thresholds.Threshold2))
	}
	return taxable / annualBenefit
}
