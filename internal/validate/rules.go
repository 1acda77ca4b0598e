package validate

import (
	"fmt"
	"math"

	"github.com/fundsight/pedocs/internal/model"
)

// checkBalanceEquation verifies the capital account roll-forward:
//
//	ending = beginning + contributions - distributions - fees - expenses
//	         + realized G/L + unrealized G/L
//
// The equation needs both flow lines to be verifiable: a statement that only
// yielded balances cannot be validated, which is not a failure. Fee and P&L
// lines default to zero. The comparison is relative to the ending balance so
// large accounts are not held to a fixed dollar tolerance.
func checkBalanceEquation(doc *model.ExtractedDocument, res *model.ValidationResult) {
	ca := doc.CapitalAccount
	if ca == nil || ca.BeginningBalance == nil || ca.EndingBalance == nil {
		// Absence is already reported by the required-field rule.
		return
	}
	if ca.Contributions == nil || ca.Distributions == nil {
		return
	}

	expected := *ca.BeginningBalance +
		zeroIfNil(ca.Contributions) -
		zeroIfNil(ca.Distributions) -
		zeroIfNil(ca.ManagementFees) -
		zeroIfNil(ca.PartnershipExpenses) +
		zeroIfNil(ca.RealizedGainLoss) +
		zeroIfNil(ca.UnrealizedGainLoss)

	actual := *ca.EndingBalance
	relDiff := math.Abs(actual-expected) / math.Max(math.Abs(actual), 1)
	if relDiff > balanceTolerance {
		res.AddError("balance_equation",
			fmt.Sprintf("ending balance %.2f does not reconcile to roll-forward %.2f (diff %.2f%%)",
				actual, expected, relDiff*100))
	}
}

// checkCommitmentArithmetic verifies commitment math: unfunded can never
// exceed the total commitment, and unfunded = total - drawn within 1%% of
// total when all three figures are present.
func checkCommitmentArithmetic(doc *model.ExtractedDocument, res *model.ValidationResult) {
	total, okT := doc.Decimal("total_commitment")
	unfunded, okU := doc.Decimal("unfunded_commitment")
	if !okT || !okU || total <= 0 {
		return
	}
	if unfunded > total {
		res.AddError("unfunded_exceeds_total",
			fmt.Sprintf("unfunded commitment %.2f exceeds total commitment %.2f", unfunded, total))
	}
	drawn, okD := doc.Decimal("drawn_commitment")
	if !okD {
		return
	}
	if math.Abs(unfunded-(total-drawn)) > commitmentTolerance*total {
		res.AddError("commitment_arithmetic",
			fmt.Sprintf("unfunded commitment %.2f differs from total %.2f - drawn %.2f", unfunded, total, drawn))
	}
}

// checkOwnershipPct flags ownership outside (0, 100%].
func checkOwnershipPct(doc *model.ExtractedDocument, res *model.ValidationResult) {
	pct, ok := doc.Decimal("ownership_pct")
	if !ok {
		return
	}
	if pct <= 0 || pct > 1 {
		res.AddWarning("ownership_pct_range",
			fmt.Sprintf("ownership percentage %.4f outside (0, 1]", pct))
	}
}

// checkAccountFees flags period management fees above 10%% of the ending
// balance, a level no plausible fee schedule produces.
func checkAccountFees(doc *model.ExtractedDocument, res *model.ValidationResult) {
	ca := doc.CapitalAccount
	if ca == nil || ca.ManagementFees == nil || ca.EndingBalance == nil || *ca.EndingBalance <= 0 {
		return
	}
	if *ca.ManagementFees > managementFeeCeiling*(*ca.EndingBalance) {
		res.AddWarning("fee_plausibility",
			fmt.Sprintf("management fees %.2f exceed %.0f%% of ending balance %.2f",
				*ca.ManagementFees, managementFeeCeiling*100, *ca.EndingBalance))
	}
}

// checkMultipleIdentity verifies TVPI = DPI + RVPI when all three were
// reported.
func checkMultipleIdentity(doc *model.ExtractedDocument, res *model.ValidationResult) {
	r := doc.Report
	if r == nil || r.TVPI == nil || r.DPI == nil || r.RVPI == nil {
		return
	}
	if math.Abs(*r.TVPI-(*r.DPI+*r.RVPI)) > multipleTolerance {
		res.AddError("multiple_identity",
			fmt.Sprintf("TVPI %.2f does not equal DPI %.2f + RVPI %.2f", *r.TVPI, *r.DPI, *r.RVPI))
	}
}

// checkMetricRanges flags performance figures outside plausible bounds.
// These are warnings: outliers happen, but they deserve a human look.
func checkMetricRanges(doc *model.ExtractedDocument, res *model.ValidationResult) {
	r := doc.Report
	if r == nil {
		return
	}
	if r.NAV != nil && *r.NAV < 0 {
		res.AddError("nav_negative", fmt.Sprintf("reported NAV %.2f is negative", *r.NAV))
	}
	if r.IRR != nil && (*r.IRR < -1 || *r.IRR > 2) {
		res.AddWarning("irr_range", fmt.Sprintf("IRR %.2f%% outside [-100%%, 200%%]", *r.IRR*100))
	}
	for _, m := range []struct {
		name string
		val  *float64
	}{
		{"moic", r.MOIC}, {"tvpi", r.TVPI}, {"dpi", r.DPI}, {"rvpi", r.RVPI},
	} {
		if m.val == nil {
			continue
		}
		if *m.val < 0 || *m.val > 20 {
			res.AddWarning(m.name+"_range",
				fmt.Sprintf("%s %.2fx outside [0, 20]", m.name, *m.val))
		}
	}
}

// checkNotice validates call and distribution notices: a positive amount,
// and for distributions a breakdown that sums back to the total.
func checkNotice(doc *model.ExtractedDocument, res *model.ValidationResult) {
	n := doc.Notice
	if n == nil {
		return
	}
	if n.Amount != nil && *n.Amount <= 0 {
		res.AddError("notice_amount", fmt.Sprintf("notice amount %.2f is not positive", *n.Amount))
	}

	if doc.DocType == model.DocTypeCapitalCallNotice {
		if n.DueDate != nil && doc.AsOfDate != nil && n.DueDate.Before(*doc.AsOfDate) {
			res.AddWarning("due_date_past",
				fmt.Sprintf("due date %s precedes notice date %s",
					n.DueDate.Format("2006-01-02"), doc.AsOfDate.Format("2006-01-02")))
		}
		return
	}

	// Distribution breakdown, when any component is present.
	if n.Amount == nil {
		return
	}
	if n.ReturnOfCapital == nil && n.RealizedGains == nil && n.Income == nil && n.TaxWithholding == nil {
		return
	}
	sum := zeroIfNil(n.ReturnOfCapital) + zeroIfNil(n.RealizedGains) +
		zeroIfNil(n.Income) + zeroIfNil(n.TaxWithholding)
	if math.Abs(sum-*n.Amount) > balanceTolerance*math.Max(math.Abs(*n.Amount), 1) {
		res.AddWarning("distribution_breakdown",
			fmt.Sprintf("breakdown sum %.2f differs from distribution amount %.2f", sum, *n.Amount))
	}
}

func checkSubscription(doc *model.ExtractedDocument, res *model.ValidationResult) {
	s := doc.Subscription
	if s == nil {
		return
	}
	if s.CommitmentAmount != nil && *s.CommitmentAmount <= 0 {
		res.AddError("commitment_amount",
			fmt.Sprintf("commitment amount %.2f is not positive", *s.CommitmentAmount))
	}
}

// checkAgreementTerms flags economics outside market norms.
func checkAgreementTerms(doc *model.ExtractedDocument, res *model.ValidationResult) {
	a := doc.Agreement
	if a == nil {
		return
	}
	if a.ManagementFeePct != nil && *a.ManagementFeePct > managementFeeCeiling {
		res.AddWarning("management_fee_range",
			fmt.Sprintf("management fee %.2f%% above %.0f%%", *a.ManagementFeePct*100, managementFeeCeiling*100))
	}
	if a.CarriedInterestPct != nil && *a.CarriedInterestPct > carriedInterestCeiling {
		res.AddWarning("carried_interest_range",
			fmt.Sprintf("carried interest %.2f%% above %.0f%%", *a.CarriedInterestPct*100, carriedInterestCeiling*100))
	}
	if a.FundTermYears != nil && (*a.FundTermYears < 1 || *a.FundTermYears > 99) {
		res.AddWarning("fund_term_range",
			fmt.Sprintf("fund term %d years outside [1, 99]", *a.FundTermYears))
	}
}
