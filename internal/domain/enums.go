package domain

// HoldingTaxType classifies how a holding's balance is taxed on withdrawal.
type HoldingTaxType string

const (
	TaxTypeTaxable     HoldingTaxType = "taxable"
	TaxTypeTraditional HoldingTaxType = "traditional"
	TaxTypeRoth        HoldingTaxType = "roth"
	TaxTypeHSA         HoldingTaxType = "hsa"
)

// TaxTreatment overrides the default tax handling of a cashflow or
// withdrawal; "none" means defer to the holding's own tax type.
type TaxTreatment string

const (
	TreatmentOrdinary     TaxTreatment = "ordinary"
	TreatmentCapitalGains TaxTreatment = "capital_gains"
	TreatmentTaxExempt    TaxTreatment = "tax_exempt"
	TreatmentNone         TaxTreatment = "none"
)

// CashflowCategory buckets a CashflowItem for reporting and for the
// YearLedger categorization rules in the Month Scheduler (§4.3 step 5).
type CashflowCategory string

const (
	CategoryWork               CashflowCategory = "work"
	CategorySpendingNeed       CashflowCategory = "spending_need"
	CategorySpendingWant       CashflowCategory = "spending_want"
	CategorySpendingHealthcare CashflowCategory = "spending_healthcare"
	CategoryTax                CashflowCategory = "tax"
	CategoryEvent              CashflowCategory = "event"
	CategoryPension            CashflowCategory = "pension"
	CategorySSA                CashflowCategory = "ssa"
	CategoryInterest           CashflowCategory = "interest"
	CategoryOther              CashflowCategory = "other"
)

// ActionKind tags the three ActionIntent variants (§3, §9).
type ActionKind string

const (
	ActionDeposit  ActionKind = "deposit"
	ActionWithdraw ActionKind = "withdraw"
	ActionConvert  ActionKind = "convert"
)

// BasisConsumptionMethod governs how a taxable holding's basis entries
// are consumed on withdrawal (§4.4).
type BasisConsumptionMethod string

const (
	BasisFIFO    BasisConsumptionMethod = "fifo"
	BasisLIFO    BasisConsumptionMethod = "lifo"
	BasisAverage BasisConsumptionMethod = "average"
)

// InflationType selects which inflation series a spending cashflow
// escalates with.
type InflationType string

const (
	InflationCPI       InflationType = "cpi"
	InflationMedical   InflationType = "medical"
	InflationHousing   InflationType = "housing"
	InflationEducation InflationType = "education"
	InflationNone      InflationType = "none"
)

// GuardrailType selects the dynamic spending rule applied to "want"
// spending.
type GuardrailType string

const (
	GuardrailNone            GuardrailType = "none"
	GuardrailCapWants        GuardrailType = "cap_wants"
	GuardrailPortfolioHealth GuardrailType = "portfolio_health"
	GuardrailGuyton          GuardrailType = "guyton"
)

// RebalanceFrequency controls how often the rebalancing module compares
// holdings against the glidepath target.
type RebalanceFrequency string

const (
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
	RebalanceAnnual    RebalanceFrequency = "annual"
	RebalanceThreshold RebalanceFrequency = "threshold"
)

// RMDExcessHandling controls what happens to RMD proceeds beyond what
// the household otherwise needed to spend.
type RMDExcessHandling string

const (
	RMDExcessSpend   RMDExcessHandling = "spend"
	RMDExcessTaxable RMDExcessHandling = "taxable"
	RMDExcessRoth    RMDExcessHandling = "roth"
)
