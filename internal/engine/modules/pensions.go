package modules

import (
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
	"github.com/rpgo/retirement-sim/pkg/dateutil"
)

// Pensions is the pension-income module (§4.2 pensions): each configured
// pension pays a monthly amount, inflated per its InflationType, starting
// at its start date, with its configured tax treatment.
type Pensions struct {
	*engine.ExplainRecorder
}

func NewPensions() *Pensions {
	return &Pensions{ExplainRecorder: engine.NewExplainRecorder("pensions")}
}

func (p *Pensions) Name() string { return "pensions" }

func (p *Pensions) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	p.Reset()
	var flows []domain.CashflowItem

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		for _, pc := range ps.Pensions {
			if ctx.Date.Before(pc.StartDate) {
				continue
			}
			years := float64(dateutil.MonthsBetween(pc.StartDate, ctx.Date)) / 12
			amount := inflate(pc.MonthlyAmount, ctx.Snapshot.Scenario.InflationRates.RateFor(pc.InflationType), years)
			if amount <= 0 {
				continue
			}

			item := domain.CashflowItem{
				Cash:     amount,
				Category: domain.CategoryPension,
				Source:   p.Name(),
			}
			switch pc.TaxTreatment {
			case domain.TreatmentCapitalGains:
				item.CapitalGains = amount
			case domain.TreatmentTaxExempt:
				item.TaxExemptIncome = amount
			case domain.TreatmentOrdinary:
				item.OrdinaryIncome = amount
			}
			flows = append(flows, item)
			p.AddCashflow(pc.ID, amount)
		}
	}
	return flows
}
