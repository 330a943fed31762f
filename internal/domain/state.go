package domain

// CashAccountState is the mutable runtime counterpart of
// CashAccount (§3).
type CashAccountState struct {
	ID           string
	Balance      float64
	InterestRate float64
}

// HoldingState is the mutable runtime counterpart of Holding
// (§3). Balance must stay >= 0; callers clamp withdrawals before
// calling into the tax-lot engine.
type HoldingState struct {
	ID                  string
	InvestmentAccountID string
	TaxType             HoldingTaxType
	HoldingType         string
	Balance             float64
	BasisEntries        []BasisEntry
	ReturnRate          float64
	ReturnStdDev        float64
	BasisMethod         BasisConsumptionMethod
}

// TotalBasis sums the holding's current basis entries.
func (h *HoldingState) TotalBasis() float64 {
	total := 0.0
	for _, e := range h.BasisEntries {
		total += e.Amount
	}
	return total
}

// YearLedger accumulates tax-relevant totals for one calendar year
// (§3). It resets to zero at the first month of each year and only
// monotonically accumulates within the year.
type YearLedger struct {
	OrdinaryIncome  float64
	CapitalGains    float64
	Deductions      float64
	TaxExemptIncome float64
	Penalties       float64
	TaxPaid         float64
	EarnedIncome    float64

	// SocialSecurityBenefits is the gross (pre-taxability) benefit paid
	// so far this year, tracked separately since only a fraction of it
	// folds into OrdinaryIncome (§4.2 social-security).
	SocialSecurityBenefits float64
}

// Reset zeroes every accumulator; called at the first month of each
// calendar year (§4.3 step 3).
func (y *YearLedger) Reset() {
	*y = YearLedger{}
}

// SimulationState is the per-run mutable financial state (§3). A run
// owns its SimulationState exclusively; it is never shared across
// concurrent runs (§5).
type SimulationState struct {
	CashAccounts   []*CashAccountState
	Holdings       []*HoldingState
	YearLedger     YearLedger
	MAGIHistory    map[int]float64
	InitialBalance float64

	// minBalance/maxBalance track the running extremes used by the
	// Summary Aggregator (§4.3 step 12, §4.5).
	minBalance float64
	maxBalance float64
	sawBalance bool
}

// NewSimulationState deep-copies the snapshot's cash accounts and
// holdings into fresh mutable runtime state for one run.
func NewSimulationState(snap *Snapshot) *SimulationState {
	state := &SimulationState{
		MAGIHistory: make(map[int]float64),
	}
	for _, ca := range snap.CashAccounts {
		state.CashAccounts = append(state.CashAccounts, &CashAccountState{
			ID:           ca.ID,
			Balance:      ca.InitialBalance,
			InterestRate: ca.InterestRate,
		})
	}
	for _, h := range snap.Holdings {
		entries := make([]BasisEntry, 0, len(h.InitialBasisEntries))
		for _, e := range h.InitialBasisEntries {
			entries = append(entries, BasisEntry{Date: e.Date, Amount: e.Amount})
		}
		state.Holdings = append(state.Holdings, &HoldingState{
			ID:                  h.ID,
			InvestmentAccountID: h.InvestmentAccountID,
			TaxType:             h.TaxType,
			HoldingType:         h.HoldingType,
			Balance:             h.InitialBalance,
			BasisEntries:        entries,
			ReturnRate:          h.ReturnRate,
			ReturnStdDev:        h.ReturnStdDev,
			BasisMethod:         h.BasisMethod,
		})
	}
	state.InitialBalance = state.TotalBalance()
	return state
}

// HoldingByID finds a runtime holding by id; nil if absent.
func (s *SimulationState) HoldingByID(id string) *HoldingState {
	for _, h := range s.Holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// PrimaryCashAccount returns the first cash account, which absorbs
// overdraft and receives undirected deposits (§3, §4.4).
func (s *SimulationState) PrimaryCashAccount() *CashAccountState {
	if len(s.CashAccounts) == 0 {
		return nil
	}
	return s.CashAccounts[0]
}

// TotalCash sums all cash account balances.
func (s *SimulationState) TotalCash() float64 {
	total := 0.0
	for _, ca := range s.CashAccounts {
		total += ca.Balance
	}
	return total
}

// TotalHoldings sums all holding balances.
func (s *SimulationState) TotalHoldings() float64 {
	total := 0.0
	for _, h := range s.Holdings {
		total += h.Balance
	}
	return total
}

// TotalBalance is cash + holdings.
func (s *SimulationState) TotalBalance() float64 {
	return s.TotalCash() + s.TotalHoldings()
}

// RecordBalance folds the current total balance into the running
// min/max extremes (§4.3 step 12).
func (s *SimulationState) RecordBalance() {
	total := s.TotalBalance()
	if !s.sawBalance {
		s.minBalance, s.maxBalance, s.sawBalance = total, total, true
		return
	}
	if total < s.minBalance {
		s.minBalance = total
	}
	if total > s.maxBalance {
		s.maxBalance = total
	}
}

// MinMaxBalance returns the running extremes, falling back to 0 if no
// month was ever recorded (§4.5).
func (s *SimulationState) MinMaxBalance() (min, max float64) {
	if !s.sawBalance {
		return 0, 0
	}
	return s.minBalance, s.maxBalance
}

// HoldingsByAccountType returns every holding whose TaxType is in the
// given set (used by the rmd module's configured account_types).
func (s *SimulationState) HoldingsByAccountType(types []HoldingTaxType) []*HoldingState {
	set := make(map[HoldingTaxType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	var out []*HoldingState
	for _, h := range s.Holdings {
		if set[h.TaxType] {
			out = append(out, h)
		}
	}
	return out
}
