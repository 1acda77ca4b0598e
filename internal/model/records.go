package model

import "time"

// NAVScope distinguishes fund-level from investor-level observations.
type NAVScope string

const (
	ScopeFund     NAVScope = "FUND"
	ScopeInvestor NAVScope = "INVESTOR"
)

// FlowType classifies a cashflow between investor and fund.
type FlowType string

const (
	FlowCall FlowType = "CALL"
	FlowDist FlowType = "DIST"
	FlowFee  FlowType = "FEE"
)

// NAVObservation is one stated NAV as of a date. Uniqueness is enforced by
// the store on (fund_id, investor_id, as_of_date, scenario, version_no).
type NAVObservation struct {
	FundID     string    `json:"fund_id"`
	InvestorID string    `json:"investor_id,omitempty"`
	Scope      NAVScope  `json:"scope"`
	NAV        float64   `json:"nav_value"`
	AsOfDate   time.Time `json:"as_of_date"`
	Scenario   string    `json:"scenario"`
	VersionNo  int       `json:"version_no"`
	DocID      string    `json:"doc_id,omitempty"`
}

// Cashflow is a single call, distribution or fee payment. Amount is always
// non-negative; direction is carried by FlowType.
type Cashflow struct {
	FundID     string    `json:"fund_id"`
	InvestorID string    `json:"investor_id"`
	FlowType   FlowType  `json:"flow_type"`
	Amount     float64   `json:"amount"`
	FlowDate   time.Time `json:"flow_date"`
	DocID      string    `json:"doc_id,omitempty"`
}

// CapitalAccountPeriod is the full roll-forward for one investor's capital
// account over one reporting period. One row per (fund, investor, as_of_date).
type CapitalAccountPeriod struct {
	BeginningBalance     *float64 `json:"beginning_balance,omitempty"`
	EndingBalance        *float64 `json:"ending_balance,omitempty"`
	Contributions        *float64 `json:"contributions_period,omitempty"`
	Distributions        *float64 `json:"distributions_period,omitempty"`
	DistributionsROC     *float64 `json:"distributions_roc_period,omitempty"`
	DistributionsGain    *float64 `json:"distributions_gain_period,omitempty"`
	DistributionsIncome  *float64 `json:"distributions_income_period,omitempty"`
	DistributionsTax     *float64 `json:"distributions_tax_period,omitempty"`
	ManagementFees       *float64 `json:"management_fees_period,omitempty"`
	PartnershipExpenses  *float64 `json:"partnership_expenses_period,omitempty"`
	RealizedGainLoss     *float64 `json:"realized_gain_loss_period,omitempty"`
	UnrealizedGainLoss   *float64 `json:"unrealized_gain_loss_period,omitempty"`
	TotalCommitment      *float64 `json:"total_commitment,omitempty"`
	DrawnCommitment      *float64 `json:"drawn_commitment,omitempty"`
	UnfundedCommitment   *float64 `json:"unfunded_commitment,omitempty"`
	OwnershipPct         *float64 `json:"ownership_pct,omitempty"`
}

// ReportFacts holds quarterly/annual report figures: a NAV plus the standard
// performance multiples.
type ReportFacts struct {
	NAV  *float64 `json:"nav,omitempty"`
	IRR  *float64 `json:"irr,omitempty"`
	MOIC *float64 `json:"moic,omitempty"`
	TVPI *float64 `json:"tvpi,omitempty"`
	DPI  *float64 `json:"dpi,omitempty"`
	RVPI *float64 `json:"rvpi,omitempty"`

	TotalCommitment    *float64 `json:"total_commitment,omitempty"`
	UnfundedCommitment *float64 `json:"unfunded_commitment,omitempty"`
}

// NoticeFacts holds capital call or distribution notice figures. For
// distribution notices the breakdown components may be present.
type NoticeFacts struct {
	Amount           *float64   `json:"amount,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	PaymentDate      *time.Time `json:"payment_date,omitempty"`
	ReturnOfCapital  *float64   `json:"return_of_capital,omitempty"`
	RealizedGains    *float64   `json:"realized_gains,omitempty"`
	Income           *float64   `json:"income,omitempty"`
	TaxWithholding   *float64   `json:"tax_withholding,omitempty"`
}

// SubscriptionFacts holds subscription agreement figures.
type SubscriptionFacts struct {
	CommitmentAmount *float64 `json:"commitment_amount,omitempty"`
	InvestorName     string   `json:"investor_name,omitempty"`
	FundName         string   `json:"fund_name,omitempty"`
}

// AgreementTerms holds terms extracted from LPAs and PPMs.
type AgreementTerms struct {
	FundName           string   `json:"fund_name,omitempty"`
	ManagementFeePct   *float64 `json:"management_fee_pct,omitempty"`
	CarriedInterestPct *float64 `json:"carried_interest_pct,omitempty"`
	HurdleRatePct      *float64 `json:"hurdle_rate_pct,omitempty"`
	FundTermYears      *int64   `json:"fund_term_years,omitempty"`
	MinimumCommitment  *float64 `json:"minimum_commitment,omitempty"`
}

// Fund is master data for a fund.
type Fund struct {
	FundID      string  `json:"fund_id"`
	FundCode    string  `json:"fund_code"`
	FundName    string  `json:"fund_name"`
	Currency    string  `json:"currency,omitempty"`
	Manager     string  `json:"fund_manager,omitempty"`
	VintageYear int     `json:"vintage_year,omitempty"`
	FundSize    float64 `json:"fund_size,omitempty"`
}

// Investor is master data for an investor.
type Investor struct {
	InvestorID   string `json:"investor_id"`
	InvestorCode string `json:"investor_code"`
	InvestorName string `json:"investor_name"`
	InvestorType string `json:"investor_type,omitempty"`
}
