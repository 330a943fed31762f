package engine

import "github.com/rpgo/retirement-sim/internal/domain"

// ExplainRecorder is a small embeddable helper that gives a module a
// working ModuleRunExplanation without each module having to manage
// the bookkeeping by hand. Modules embed it, call AddCashflow/
// AddAction/AddMarket/SetInput/Checkpoint from their hooks, call Reset()
// at the start of their own monthly hook, and the scheduler calls
// Explain() once per month.
type ExplainRecorder struct {
	name string
	expl domain.ModuleRunExplanation
}

// NewExplainRecorder creates a recorder for a module's fixed name.
func NewExplainRecorder(name string) *ExplainRecorder {
	r := &ExplainRecorder{name: name}
	r.Reset()
	return r
}

// Reset clears all accumulated totals for the next month.
func (r *ExplainRecorder) Reset() {
	r.expl = domain.ModuleRunExplanation{
		Module:         r.name,
		CashflowTotals: map[string]float64{},
		ActionTotals:   map[string]float64{},
		MarketTotals:   map[string]float64{},
		Inputs:         map[string]any{},
	}
}

// AddCashflow accumulates a named cashflow total (e.g. category
// string).
func (r *ExplainRecorder) AddCashflow(key string, amount float64) {
	r.expl.CashflowTotals[key] += amount
}

// AddAction accumulates a named action total (e.g. action kind
// string).
func (r *ExplainRecorder) AddAction(key string, amount float64) {
	r.expl.ActionTotals[key] += amount
}

// AddMarket accumulates a named market total.
func (r *ExplainRecorder) AddMarket(key string, amount float64) {
	r.expl.MarketTotals[key] += amount
}

// SetInput records a captured input value under key.
func (r *ExplainRecorder) SetInput(key string, value any) {
	r.expl.Inputs[key] = value
}

// Checkpoint appends a free-form trace line.
func (r *ExplainRecorder) Checkpoint(line string) {
	r.expl.Checkpoints = append(r.expl.Checkpoints, line)
}

// Explain returns a copy of the accumulated explanation for this
// month.
func (r *ExplainRecorder) Explain() *domain.ModuleRunExplanation {
	out := r.expl
	cf := make(map[string]float64, len(r.expl.CashflowTotals))
	for k, v := range r.expl.CashflowTotals {
		cf[k] = v
	}
	at := make(map[string]float64, len(r.expl.ActionTotals))
	for k, v := range r.expl.ActionTotals {
		at[k] = v
	}
	mt := make(map[string]float64, len(r.expl.MarketTotals))
	for k, v := range r.expl.MarketTotals {
		mt[k] = v
	}
	in := make(map[string]any, len(r.expl.Inputs))
	for k, v := range r.expl.Inputs {
		in[k] = v
	}
	out.CashflowTotals, out.ActionTotals, out.MarketTotals, out.Inputs = cf, at, mt, in
	out.Checkpoints = append([]string(nil), r.expl.Checkpoints...)
	return &out
}
