package domain

// ContributionLimits mirrors the IRS annual limit table the income/work
// module clamps 401k/HSA contributions against.
type ContributionLimits struct {
	Employee401kLimit       float64 `yaml:"employee_401k_limit" json:"employee_401k_limit"`
	Employee401kCatchUp     float64 `yaml:"employee_401k_catch_up" json:"employee_401k_catch_up"`
	CatchUpAge              int     `yaml:"catch_up_age" json:"catch_up_age"`
	HSAIndividualLimit      float64 `yaml:"hsa_individual_limit" json:"hsa_individual_limit"`
	HSAFamilyLimit          float64 `yaml:"hsa_family_limit" json:"hsa_family_limit"`
	HSACatchUpAge           int     `yaml:"hsa_catch_up_age" json:"hsa_catch_up_age"`
	HSACatchUpAmount        float64 `yaml:"hsa_catch_up_amount" json:"hsa_catch_up_amount"`
}

// TaxBracket is one marginal-rate bracket: income above Threshold is
// taxed at Rate up to the next bracket's threshold.
type TaxBracket struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Rate      float64 `yaml:"rate" json:"rate"`
}

// FederalTaxPolicy bundles the ordinary-income and capital-gains
// bracket schedules plus the standard deduction used by the taxes
// module (§4.2 taxes).
type FederalTaxPolicy struct {
	OrdinaryBrackets     []TaxBracket `yaml:"ordinary_brackets" json:"ordinary_brackets"`
	CapitalGainsBrackets []TaxBracket `yaml:"capital_gains_brackets" json:"capital_gains_brackets"`
	StandardDeduction    float64      `yaml:"standard_deduction" json:"standard_deduction"`
}

// StatePolicy is an optional flat-or-bracketed state tax layer (§4.2
// taxes, "optional state tax").
type StatePolicy struct {
	Name     string       `yaml:"name" json:"name"`
	Brackets []TaxBracket `yaml:"brackets" json:"brackets"`
}

// IRMAATier is one Medicare IRMAA surcharge tier keyed by a MAGI
// threshold.
type IRMAATier struct {
	MAGIThreshold   float64 `yaml:"magi_threshold" json:"magi_threshold"`
	MonthlySurcharge float64 `yaml:"monthly_surcharge" json:"monthly_surcharge"`
}

// IRMAATable is the ordered (ascending MAGI threshold) surcharge
// schedule.
type IRMAATable struct {
	Tiers []IRMAATier `yaml:"tiers" json:"tiers"`
}

// RMDTable maps age -> life-expectancy divisor (IRS Uniform Lifetime
// Table), used by the rmd module.
type RMDTable struct {
	Divisors map[int]float64 `yaml:"divisors" json:"divisors"`
}

// DivisorForAge returns the RMD divisor for an age, falling back to the
// oldest tabulated divisor for ages beyond the table (uniform lifetime
// tables stop publishing past 120).
func (t RMDTable) DivisorForAge(age int) (float64, bool) {
	if d, ok := t.Divisors[age]; ok {
		return d, true
	}
	oldest := -1
	for a := range t.Divisors {
		if a > oldest {
			oldest = a
		}
	}
	if oldest >= 0 && age > oldest {
		return t.Divisors[oldest], true
	}
	return 0, false
}

// ProvisionalIncomeThreshold is one of the two thresholds in the Social
// Security taxability formula.
type ProvisionalIncomeThreshold struct {
	Threshold1 float64 `yaml:"threshold_1" json:"threshold_1"`
	Threshold2 float64 `yaml:"threshold_2" json:"threshold_2"`
}

// SocialSecurityProvisionalIncomeBrackets holds the provisional-income
// thresholds used to determine what fraction of a benefit is taxable.
type SocialSecurityProvisionalIncomeBrackets struct {
	MarriedFilingJointly ProvisionalIncomeThreshold `yaml:"married_filing_jointly" json:"married_filing_jointly"`
	Single               ProvisionalIncomeThreshold `yaml:"single" json:"single"`
}
