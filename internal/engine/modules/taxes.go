package modules

import (
	"math"

	"github.com/rpgo/retirement-sim/internal/domain"
	"github.com/rpgo/retirement-sim/internal/engine"
)

// Taxes is the end-of-year tax module (§4.2 taxes): computes federal
// bracketed tax on ordinary income and capital gains, optional state
// tax, and Medicare IRMAA surcharges, then emits a single tax-category
// cashflow sized to taxDue minus tax already paid this year. Records the
// year's MAGI.
type Taxes struct {
	*engine.ExplainRecorder
}

func NewTaxes() *Taxes {
	return &Taxes{ExplainRecorder: engine.NewExplainRecorder("taxes")}
}

func (t *Taxes) Name() string { return "taxes" }

func (t *Taxes) GetCashflows(state *domain.SimulationState, ctx *domain.SimulationContext) []domain.CashflowItem {
	t.Reset()
	if !ctx.IsEndOfYear {
		return nil
	}

	policy := ctx.Snapshot.FederalTaxPolicy
	ledger := state.YearLedger

	taxableOrdinary := math.Max(0, ledger.OrdinaryIncome-ledger.Deductions-policy.StandardDeduction)
	federalOrdinary := computeBracketTax(taxableOrdinary, policy.OrdinaryBrackets)
	federalCapGains := computeBracketTax(math.Max(0, ledger.CapitalGains), policy.CapitalGainsBrackets)

	var stateTax float64
	if sp := ctx.Snapshot.StatePolicy; sp != nil {
		stateTaxable := math.Max(0, ledger.OrdinaryIncome+ledger.CapitalGains-ledger.Deductions)
		stateTax = computeBracketTax(stateTaxable, sp.Brackets)
	}

	magi := ledger.OrdinaryIncome + ledger.CapitalGains + ledger.TaxExemptIncome
	state.MAGIHistory[ctx.Date.Year()] = magi

	irmaaSurcharge := annualIRMAASurcharge(ctx.Snapshot.IRMAATable, magi)

	taxDue := federalOrdinary + federalCapGains + stateTax + irmaaSurcharge + ledger.Penalties
	due := taxDue - ledger.TaxPaid
	t.SetInput("magi", magi)
	t.SetInput("federal_ordinary", federalOrdinary)
	t.SetInput("federal_capital_gains", federalCapGains)
	t.SetInput("state_tax", stateTax)
	t.SetInput("irmaa_surcharge", irmaaSurcharge)
	if due == 0 {
		return nil
	}

	t.AddCashflow("tax_due", due)
	return []domain.CashflowItem{{
		Cash:     -due,
		Category: domain.CategoryTax,
		Source:   t.Name(),
	}}
}

// computeBracketTax applies a progressive marginal-rate schedule:
// brackets must be sorted ascending by Threshold; income above each
// bracket's threshold (up to the next bracket's threshold) is taxed at
// its Rate.
func computeBracketTax(taxable float64, brackets []domain.TaxBracket) float64 {
	if taxable <= 0 || len(brackets) == 0 {
		return 0
	}
	tax := 0.0
	for i, b := range brackets {
		upper := math.Inf(1)
		if i+1 < len(brackets) {
			upper = brackets[i+1].Threshold
		}
		if taxable <= b.Threshold {
			continue
		}
		band := math.Min(taxable, upper) - b.Threshold
		if band > 0 {
			tax += band * b.Rate
		}
	}
	return tax
}

// annualIRMAASurcharge returns twelve months of the monthly surcharge
// for the highest tier whose threshold the MAGI meets or exceeds.
func annualIRMAASurcharge(table domain.IRMAATable, magi float64) float64 {
	var surcharge float64
	for _, tier := range table.Tiers {
		if magi >= tier.MAGIThreshold {
			surcharge = tier.MonthlySurcharge * 12
		}
	}
	return surcharge
}
