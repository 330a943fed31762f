package domain

// AccountBalanceSnapshot is one account's (cash or holding) balance at
// the end of a month, captured for the month's explanation (§4.3 step
// 10). For roth holdings, SeasonedBasis/UnseasonedBasis split the
// contribution basis by the 60-month seasoning line (§4.4, §9).
type AccountBalanceSnapshot struct {
	ID              string
	IsCash          bool
	Balance         float64
	SeasonedBasis   float64
	UnseasonedBasis float64
}

// ModuleRunExplanation is one module's structured trace for one month
// (§3, §4.3 step 10): cashflow totals by category, action totals by
// kind, market totals, plus whatever inputs/checkpoints the module
// chose to record via its Explain slot.
type ModuleRunExplanation struct {
	Module          string
	CashflowTotals  map[string]float64
	ActionTotals    map[string]float64
	MarketTotals    map[string]float64
	Inputs          map[string]any
	Checkpoints     []string
}

// MonthExplanation is the full per-month trace: one ModuleRunExplanation
// per module plus the resulting account balances (§3, §4.3 step 10).
type MonthExplanation struct {
	MonthIndex int
	DateISO    string
	Modules    []ModuleRunExplanation
	Balances   []AccountBalanceSnapshot
}

// MonthlyRecord is the per-step rollup emitted at §4.3 step 11.
type MonthlyRecord struct {
	MonthIndex int
	DateISO    string
	Age        float64

	Income          float64
	Spending        float64
	Contributions   float64
	Withdrawals     float64
	Taxes           float64
	OrdinaryIncome  float64
	CapitalGains    float64
	Deductions      float64

	CashBalance       float64
	InvestmentBalance float64
	TotalBalance      float64
}

// YearRecord is the yearly rollup emitted at §4.3 step 13 and consumed
// by the Summary Aggregator (§4.5).
type YearRecord struct {
	Year int
	Age  float64

	Income         float64
	Spending       float64
	Contributions  float64
	Withdrawals    float64
	Taxes          float64
	OrdinaryIncome float64
	CapitalGains   float64
	Deductions     float64

	EndingCashBalance       float64
	EndingInvestmentBalance float64
	EndingTotalBalance      float64
	DateISO                 string

	// GuardrailFactor is the want-spending scaling factor recorded for
	// the last month of the year, if a guardrail is configured
	// (§9 Open Question).
	GuardrailFactor    float64
	HasGuardrailFactor bool
}
