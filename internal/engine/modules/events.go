package modules

import (
	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// Events is the one-time-cashflow module (§4.2 events): each configured
// event fires exactly once, on the month containing its date, with its
// configured category and tax treatment.
type Events struct {
	*engine.ExplainRecorder

	// fired tracks which event ids have already paid out, so a run that
	// steps past an event's month (e.g. a leap day) never double-fires.
	fired map[string]bool
}

func NewEvents() *Events {
	return &Events{ExplainRecorder: engine.NewExplainRecorder("events"), fired: make(map[string]bool)}
}

func (e *Events) Name() string { return "events" }

func (e *Events) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	e.Reset()
	var flows []domain.CashflowItem

	for _, ps := range ctx.Snapshot.ActivePersonStrategies() {
		for _, ev := range ps.Events {
			if e.fired[ev.ID] {
				continue
			}
			if ev.Date.Year() != ctx.Date.Year() || ev.Date.Month() != ctx.Date.Month() {
				continue
			}
			e.fired[ev.ID] = true

			item := domain.CashflowItem{
				Cash:     ev.Amount,
				Category: ev.Category,
				Source:   e.Name(),
			}
			if ev.Amount > 0 {
				switch ev.TaxTreatment {
				case domain.TreatmentCapitalGains:
					item.CapitalGains = ev.Amount
				case domain.TreatmentTaxExempt:
					item.TaxExemptIncome = ev.Amount
				case domain.TreatmentOrdinary:
					item.OrdinaryIncome = ev.Amount
				}
			}
			flows = append(flows, item)
			e.AddCashflow(ev.ID, ev.Amount)
		}
	}
	return flows
}
