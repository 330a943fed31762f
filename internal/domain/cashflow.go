package domain


// CashflowItem is a signed cash movement emitted by a module hook
// (§3). Positive Cash is income into the primary cash account;
// negative Cash is an outflow. The tax fields accumulate into the
// YearLedger regardless of Cash's sign (§4.3 step 5).
type CashflowItem struct {
	Cash            float64
	Category        CashflowCategory
	OrdinaryIncome  float64
	CapitalGains    float64
	Deductions      float64
	TaxExemptIncome float64

	// SocialSecurityBenefit is the gross Social Security benefit portion
	// of Cash, if any; only a fraction of it is already reflected in
	// OrdinaryIncome (§4.2 social-security).
	SocialSecurityBenefit float64

	// Source names the module that emitted this flow, for explanation
	// assembly (§4.3 step 10).
	Source string
}
