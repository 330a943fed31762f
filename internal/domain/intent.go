package domain


// ActionIntent is the tagged union over deposit/withdraw/convert
// (§3, §9). Priority controls resolution order (ascending, stable);
// SourceHoldingID/TargetHoldingID are optional and default per §4.4.
type ActionIntent struct {
	Kind             ActionKind
	Amount           float64
	Priority         int
	SourceHoldingID  string
	TargetHoldingID  string
	TaxTreatment     TaxTreatment
	SkipPenalty      bool
	FromCash         bool // for deposits: whether cash is debited (default true)
	FromCashSet      bool // whether FromCash was explicitly set
	Source           string

	// seq preserves original emission order for the stable sort in
	// §4.3 step 7 ("priority then insertion").
	seq int
}

// SetSeq records the intent's global emission order; called by the
// scheduler immediately after collection, before the priority sort.
func (a *ActionIntent) SetSeq(n int) { a.seq = n }

// Seq returns the recorded emission order.
func (a *ActionIntent) Seq() int { return a.seq }

// ActionRecord is an ActionIntent resolved to an actually-applied
// amount, clipped by availability (§3, §4.4).
type ActionRecord struct {
	Kind            ActionKind
	RequestedAmount float64
	ResolvedAmount  float64
	SourceHoldingID string
	TargetHoldingID string
	TaxTreatment    TaxTreatment
	SkipPenalty     bool
	FromCash        bool // for deposits: whether cash is debited (default true)
	FromCashSet     bool
	Source          string

	// Tax/penalty decomposition of the resolved amount, filled in by
	// the tax-lot engine (§4.4) and rolled into the month's
	// explanation and MonthlyRecord.
	OrdinaryIncome float64
	CapitalGains   float64
	TaxFree        float64
	Penalty        float64
}

// MarketReturn is one holding's (or cash account's) observed return
// for the month, derived from before/after balances by the
// returns-core module (§4.2, §4.3 step 9).
type MarketReturn struct {
	HoldingID string
	Before    float64
	After     float64
	Rate      float64
}
