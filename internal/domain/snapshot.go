package domain

import "time"

// Person is one member of the household being projected.
type Person struct {
	ID            string    `yaml:"id" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	DateOfBirth   time.Time `yaml:"date_of_birth" json:"date_of_birth"`
	LifeExpectancy int      `yaml:"life_expectancy" json:"life_expectancy"`
	IsPrimary     bool      `yaml:"is_primary" json:"is_primary"`
}

// Scenario ties the snapshot together: which person strategies are
// active for this run, plus the annual inflation assumptions shared by
// every module that inflates a cashflow (spending, pensions).
type Scenario struct {
	ID                string            `yaml:"id" json:"id"`
	Name              string            `yaml:"name" json:"name"`
	PersonStrategyIDs []string          `yaml:"person_strategy_ids" json:"person_strategy_ids"`
	InflationRates    InflationRates    `yaml:"inflation_rates" json:"inflation_rates"`
}

// InflationRates holds one annual rate per InflationType series (§9 Open
// Question: the spec names the series an inflationType selects but not
// where its rate lives; resolved by attaching the rate table to the
// scenario so every inflating module reads the same assumptions).
type InflationRates struct {
	CPI       float64 `yaml:"cpi" json:"cpi"`
	Medical   float64 `yaml:"medical" json:"medical"`
	Housing   float64 `yaml:"housing" json:"housing"`
	Education float64 `yaml:"education" json:"education"`
}

// RateFor returns the annual rate for an InflationType, 0 for "none" or
// an unrecognized type.
func (r InflationRates) RateFor(t InflationType) float64 {
	switch t {
	case InflationCPI:
		return r.CPI
	case InflationMedical:
		return r.Medical
	case InflationHousing:
		return r.Housing
	case InflationEducation:
		return r.Education
	default:
		return 0
	}
}

// PersonStrategy bundles every per-person module configuration for one
// person: work schedule, spending, Social Security, pensions, one-time
// events, RMD settings, Roth conversion settings.
type PersonStrategy struct {
	ID             string `yaml:"id" json:"id"`
	PersonID       string `yaml:"person_id" json:"person_id"`
	WorkPeriods    []WorkPeriod         `yaml:"work_periods" json:"work_periods"`
	Spending       SpendingConfig       `yaml:"spending" json:"spending"`
	SocialSecurity SocialSecurityConfig `yaml:"social_security" json:"social_security"`
	Pensions       []PensionConfig      `yaml:"pensions" json:"pensions"`
	Events         []EventConfig        `yaml:"events" json:"events"`
	RMD            RMDConfig            `yaml:"rmd" json:"rmd"`
	RothConversion RothConversionConfig `yaml:"roth_conversion" json:"roth_conversion"`
}

// WorkPeriod describes a span of active employment feeding the
// income/work module.
type WorkPeriod struct {
	StartDate                time.Time `yaml:"start_date" json:"start_date"`
	EndDate                  time.Time `yaml:"end_date" json:"end_date"`
	AnnualSalary             float64   `yaml:"annual_salary" json:"annual_salary"`
	AnnualBonus              float64   `yaml:"annual_bonus" json:"annual_bonus"`
	Employee401kPercent      float64   `yaml:"employee_401k_percent" json:"employee_401k_percent"`
	EmployerMatchPercent     float64   `yaml:"employer_match_percent" json:"employer_match_percent"`
	Traditional401kHoldingID string    `yaml:"traditional_401k_holding_id" json:"traditional_401k_holding_id"`
	Roth401kHoldingID        string    `yaml:"roth_401k_holding_id,omitempty" json:"roth_401k_holding_id,omitempty"`
	HSAMonthlyContribution   float64   `yaml:"hsa_monthly_contribution" json:"hsa_monthly_contribution"`
	HSAHoldingID             string    `yaml:"hsa_holding_id,omitempty" json:"hsa_holding_id,omitempty"`
}

// SpendingConfig describes recurring monthly spending needs/wants plus
// optional guardrail scaling of discretionary "want" spending.
type SpendingConfig struct {
	MonthlyNeed        float64       `yaml:"monthly_need" json:"monthly_need"`
	MonthlyWant        float64       `yaml:"monthly_want" json:"monthly_want"`
	MonthlyHealthcare  float64       `yaml:"monthly_healthcare" json:"monthly_healthcare"`
	MonthlyLongTermCare float64      `yaml:"monthly_long_term_care" json:"monthly_long_term_care"`
	NeedInflation      InflationType `yaml:"need_inflation" json:"need_inflation"`
	WantInflation      InflationType `yaml:"want_inflation" json:"want_inflation"`
	HealthcareInflation InflationType `yaml:"healthcare_inflation" json:"healthcare_inflation"`
	Guardrail          GuardrailConfig `yaml:"guardrail" json:"guardrail"`
}

// GuardrailConfig configures the dynamic spending rule applied to want
// spending (§4.2 spending module, §9 Open Question on factor stats).
type GuardrailConfig struct {
	Type                     GuardrailType `yaml:"type" json:"type"`
	WithdrawalRateLimit      float64       `yaml:"withdrawal_rate_limit" json:"withdrawal_rate_limit"`
	TargetPortfolioValue     float64       `yaml:"target_portfolio_value" json:"target_portfolio_value"`
	HealthPoints             []GuardrailHealthPoint `yaml:"health_points" json:"health_points"`
	GuytonTriggerRateIncrease float64      `yaml:"guyton_trigger_rate_increase" json:"guyton_trigger_rate_increase"`
	GuytonAppliedCut         float64       `yaml:"guyton_applied_cut" json:"guyton_applied_cut"`
	GuytonCutDurationMonths  int           `yaml:"guyton_cut_duration_months" json:"guyton_cut_duration_months"`
}

// GuardrailHealthPoint is one knot of the portfolio-health interpolation
// curve: health ratio -> want-spending factor.
type GuardrailHealthPoint struct {
	Health float64 `yaml:"health" json:"health"`
	Factor float64 `yaml:"factor" json:"factor"`
}

// SocialSecurityConfig configures the social-security module for one
// person.
type SocialSecurityConfig struct {
	Enabled        bool      `yaml:"enabled" json:"enabled"`
	MonthlyBenefit float64   `yaml:"monthly_benefit" json:"monthly_benefit"`
	StartDate      time.Time `yaml:"start_date" json:"start_date"`
	COLA           InflationType `yaml:"cola" json:"cola"`
}

// PensionConfig configures one pension income stream.
type PensionConfig struct {
	ID            string       `yaml:"id" json:"id"`
	MonthlyAmount float64      `yaml:"monthly_amount" json:"monthly_amount"`
	StartDate     time.Time    `yaml:"start_date" json:"start_date"`
	InflationType InflationType `yaml:"inflation_type" json:"inflation_type"`
	TaxTreatment  TaxTreatment `yaml:"tax_treatment" json:"tax_treatment"`
}

// EventConfig is a one-time cashflow on a configured date (§4.2 events).
type EventConfig struct {
	ID           string       `yaml:"id" json:"id"`
	Date         time.Time    `yaml:"date" json:"date"`
	Amount       float64      `yaml:"amount" json:"amount"`
	Category     CashflowCategory `yaml:"category" json:"category"`
	TaxTreatment TaxTreatment `yaml:"tax_treatment" json:"tax_treatment"`
}

// RMDConfig configures the required-minimum-distribution module.
type RMDConfig struct {
	Enabled      bool              `yaml:"enabled" json:"enabled"`
	StartAge     int               `yaml:"start_age" json:"start_age"`
	AccountTypes []HoldingTaxType  `yaml:"account_types" json:"account_types"`
	ExcessHandling RMDExcessHandling `yaml:"excess_handling" json:"excess_handling"`
	ExcessTargetHoldingID string      `yaml:"excess_target_holding_id,omitempty" json:"excess_target_holding_id,omitempty"`
}

// RothConversionConfig configures the roth-conversion / roth-ladder
// module.
type RothConversionConfig struct {
	Enabled          bool    `yaml:"enabled" json:"enabled"`
	Ladder           bool    `yaml:"ladder" json:"ladder"`
	StartAge         float64 `yaml:"start_age" json:"start_age"`
	EndAge           float64 `yaml:"end_age" json:"end_age"`
	MinConversion    float64 `yaml:"min_conversion" json:"min_conversion"`
	MaxConversion    float64 `yaml:"max_conversion" json:"max_conversion"`
	TargetTaxBracketTopRate float64 `yaml:"target_tax_bracket_top_rate" json:"target_tax_bracket_top_rate"`
	RespectIRMAA     bool    `yaml:"respect_irmaa" json:"respect_irmaa"`
	LeadTimeYears    int     `yaml:"lead_time_years" json:"lead_time_years"`
	SourceHoldingID  string  `yaml:"source_holding_id,omitempty" json:"source_holding_id,omitempty"`
	TargetHoldingID  string  `yaml:"target_holding_id,omitempty" json:"target_holding_id,omitempty"`
}

// InvestmentAccount groups one or more Holdings under a custodial
// account, and carries the rebalancing glidepath for the module.
type InvestmentAccount struct {
	ID          string            `yaml:"id" json:"id"`
	OwnerID     string            `yaml:"owner_id" json:"owner_id"`
	Rebalancing RebalancingConfig `yaml:"rebalancing" json:"rebalancing"`
}

// RebalancingConfig configures the rebalancing module for one
// investment account (§4.2 rebalancing).
type RebalancingConfig struct {
	Enabled        bool               `yaml:"enabled" json:"enabled"`
	Frequency      RebalanceFrequency `yaml:"frequency" json:"frequency"`
	DriftThreshold float64            `yaml:"drift_threshold" json:"drift_threshold"`
	MinTradeAmount float64            `yaml:"min_trade_amount" json:"min_trade_amount"`
	Glidepath      []GlidepathPoint   `yaml:"glidepath" json:"glidepath"`
}

// GlidepathPoint maps an age to target holding-id -> weight allocation.
type GlidepathPoint struct {
	Age     float64            `yaml:"age" json:"age"`
	Weights map[string]float64 `yaml:"weights" json:"weights"`
}

// CashAccount is the snapshot-seed for one cash account (§3).
type CashAccount struct {
	ID             string  `yaml:"id" json:"id"`
	InitialBalance float64 `yaml:"initial_balance" json:"initial_balance"`
	InterestRate   float64 `yaml:"interest_rate" json:"interest_rate"`
}

// BasisEntry is one {date, amount} contribution-basis record (§3, §9).
type BasisEntry struct {
	Date   time.Time `yaml:"date" json:"date"`
	Amount float64   `yaml:"amount" json:"amount"`
}

// Holding is the snapshot-seed for one investment holding (§3).
type Holding struct {
	ID                  string                 `yaml:"id" json:"id"`
	InvestmentAccountID string                 `yaml:"investment_account_id" json:"investment_account_id"`
	TaxType             HoldingTaxType         `yaml:"tax_type" json:"tax_type"`
	HoldingType         string                 `yaml:"holding_type" json:"holding_type"`
	InitialBalance      float64                `yaml:"initial_balance" json:"initial_balance"`
	InitialBasisEntries []BasisEntry           `yaml:"initial_basis_entries" json:"initial_basis_entries"`
	ReturnRate          float64                `yaml:"return_rate" json:"return_rate"`
	ReturnStdDev        float64                `yaml:"return_std_dev" json:"return_std_dev"`
	BasisMethod         BasisConsumptionMethod `yaml:"basis_method" json:"basis_method"`
}

// EarlyRetirementConfig governs early-withdrawal penalty treatment.
type EarlyRetirementConfig struct {
	PenaltyRate      float64 `yaml:"penalty_rate" json:"penalty_rate"`
	SubstantiallyEqualPeriodic bool `yaml:"substantially_equal_periodic" json:"substantially_equal_periodic"`
}

// Snapshot is the fully-materialized, immutable input bundle consumed by
// one run (§1, §3, §6).
type Snapshot struct {
	ScenarioID          string
	Scenario            Scenario
	People              []Person
	PersonStrategies    []PersonStrategy
	InvestmentAccounts  []InvestmentAccount
	CashAccounts        []CashAccount
	Holdings            []Holding
	EarlyRetirement     EarlyRetirementConfig

	ContributionLimits        ContributionLimits
	FederalTaxPolicy          FederalTaxPolicy
	StatePolicy               *StatePolicy
	IRMAATable                IRMAATable
	RMDTable                  RMDTable
	SocialSecurityBrackets    SocialSecurityProvisionalIncomeBrackets
}

// PersonByID finds a person by id; nil if absent.
func (s *Snapshot) PersonByID(id string) *Person {
	for i := range s.People {
		if s.People[i].ID == id {
			return &s.People[i]
		}
	}
	return nil
}

// StrategyByID finds a person strategy by id; nil if absent.
func (s *Snapshot) StrategyByID(id string) *PersonStrategy {
	for i := range s.PersonStrategies {
		if s.PersonStrategies[i].ID == id {
			return &s.PersonStrategies[i]
		}
	}
	return nil
}

// HoldingByID finds a holding spec by id; nil if absent.
func (s *Snapshot) HoldingByID(id string) *Holding {
	for i := range s.Holdings {
		if s.Holdings[i].ID == id {
			return &s.Holdings[i]
		}
	}
	return nil
}

// ActivePersonStrategies returns the person strategies referenced by the
// scenario's personStrategyIds (§4.1).
func (s *Snapshot) ActivePersonStrategies() []PersonStrategy {
	ids := make(map[string]bool, len(s.Scenario.PersonStrategyIDs))
	for _, id := range s.Scenario.PersonStrategyIDs {
		ids[id] = true
	}
	var out []PersonStrategy
	for _, ps := range s.PersonStrategies {
		if ids[ps.ID] {
			out = append(out, ps)
		}
	}
	return out
}

// ActivePeople returns the people referenced by the active person
// strategies (§4.1).
func (s *Snapshot) ActivePeople() []Person {
	active := s.ActivePersonStrategies()
	ids := make(map[string]bool, len(active))
	for _, ps := range active {
		ids[ps.PersonID] = true
	}
	var out []Person
	for _, p := range s.People {
		if ids[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// FilingStatus derives a federal filing status from the active
// household (§9 Open Question: the spec's reference tables key off
// filing status but no entity carries one; resolved by treating two or
// more active people as married filing jointly, one as single).
func (s *Snapshot) FilingStatus() string {
	if len(s.ActivePeople()) >= 2 {
		return "married_filing_jointly"
	}
	return "single"
}

// ProvisionalIncomeThresholdFor returns the bracket matching FilingStatus.
func (s *Snapshot) ProvisionalIncomeThresholdFor() ProvisionalIncomeThreshold {
	if s.FilingStatus() == "married_filing_jointly" {
		return s.SocialSecurityBrackets.MarriedFilingJointly
	}
	return s.SocialSecurityBrackets.Single
}

// PrimaryPerson returns the active person flagged IsPrimary, falling back
// to the first active person if none is flagged, or nil if there are no
// active people (§4.1 EmptyPopulation).
func (s *Snapshot) PrimaryPerson() *Person {
	active := s.ActivePeople()
	for i := range active {
		if active[i].IsPrimary {
			return &active[i]
		}
	}
	if len(active) > 0 {
		return &active[0]
	}
	return nil
}
