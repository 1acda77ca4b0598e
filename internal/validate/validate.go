// Package validate runs domain rules against extracted documents: the capital
// account balance equation, commitment arithmetic, NAV continuity against
// stored history, cashflow consistency, performance-multiple identities and
// fee plausibility. Rules never mutate the document; they only accumulate
// findings.
package validate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
)

const (
	// balanceTolerance is the relative tolerance for the roll-forward
	// equation, measured against max(|ending|, 1).
	balanceTolerance = 0.005

	// commitmentTolerance is the relative tolerance for
	// unfunded = total - drawn, measured against total commitment.
	commitmentTolerance = 0.01

	// periodContinuityTolerance is the relative tolerance between a
	// statement's beginning balance and the prior observed value.
	periodContinuityTolerance = 0.01

	// navJumpUpper flags a NAV more than 6x the prior observation (+500%).
	navJumpUpper = 6.0
	// navJumpLower flags a NAV below 10% of the prior observation (-90%).
	navJumpLower = 0.1

	// flowMaterialityFloor is the minimum net flow that triggers the
	// cashflow/NAV consistency check.
	flowMaterialityFloor = 10000
	// flowMovementShare is the fraction of net flows the NAV is expected to
	// have moved by.
	flowMovementShare = 0.5

	// multipleTolerance is the absolute tolerance for TVPI = DPI + RVPI.
	multipleTolerance = 0.01

	// Plausibility ceilings for fund economics.
	managementFeeCeiling   = 0.10
	carriedInterestCeiling = 0.25

	// Validation confidence model.
	errorPenalty   = 0.15
	warningPenalty = 0.05
	criticalBonus  = 0.10
)

// History supplies prior observations for continuity checks. Implementations
// returning (nil, nil) mean "no history", which skips the rule.
type History interface {
	// LatestNAVBefore returns the most recent NAV observation strictly
	// before the given date for the fund (and investor, when non-empty).
	LatestNAVBefore(ctx context.Context, fundID, investorID string, before time.Time) (*model.NAVObservation, error)
	// CashflowsBetween returns the flows recorded in (from, to] for the
	// fund/investor pair.
	CashflowsBetween(ctx context.Context, fundID, investorID string, from, to time.Time) ([]model.Cashflow, error)
}

// Validator applies every rule relevant to a document's type.
type Validator struct {
	lib     *fieldlib.Library
	history History
}

// New builds a validator. history may be nil; continuity rules are then
// skipped.
func New(lib *fieldlib.Library, history History) *Validator {
	return &Validator{lib: lib, history: history}
}

// Validate runs all applicable rules and computes the validation confidence.
// A history lookup failure degrades to a warning rather than failing the
// document.
func (v *Validator) Validate(ctx context.Context, doc *model.ExtractedDocument) *model.ValidationResult {
	res := &model.ValidationResult{IsValid: true}

	v.checkRequiredFields(doc, res)

	switch doc.DocType {
	case model.DocTypeCapitalAccount:
		checkBalanceEquation(doc, res)
		checkCommitmentArithmetic(doc, res)
		checkOwnershipPct(doc, res)
		checkAccountFees(doc, res)
		v.checkNAVContinuity(ctx, doc, accountNAV(doc), res)
		v.checkPeriodContinuity(ctx, doc, res)
		v.checkCashflowConsistency(ctx, doc, res)
	case model.DocTypeQuarterlyReport, model.DocTypeAnnualReport:
		checkMultipleIdentity(doc, res)
		checkMetricRanges(doc, res)
		checkCommitmentArithmetic(doc, res)
		v.checkNAVContinuity(ctx, doc, reportNAV(doc), res)
	case model.DocTypeCapitalCallNotice, model.DocTypeDistributionNotice:
		checkNotice(doc, res)
	case model.DocTypeSubscription:
		checkSubscription(doc, res)
	case model.DocTypeLPA, model.DocTypePPM:
		checkAgreementTerms(doc, res)
	}

	res.Confidence = v.confidence(doc, res)
	return res
}

// checkRequiredFields errors on every required catalog field the extraction
// left unresolved.
func (v *Validator) checkRequiredFields(doc *model.ExtractedDocument, res *model.ValidationResult) {
	for _, def := range v.lib.Required(doc.DocType) {
		if _, ok := doc.Field(def.Canonical); !ok {
			res.AddError("required_field_missing",
				fmt.Sprintf("required field %s was not extracted", def.Canonical))
		}
	}
}

// confidence scores validation quality: penalties per finding, with a bonus
// when every required field resolved.
func (v *Validator) confidence(doc *model.ExtractedDocument, res *model.ValidationResult) float64 {
	conf := 1.0 - errorPenalty*float64(len(res.Errors)) - warningPenalty*float64(len(res.Warnings))

	allCritical := true
	for _, def := range v.lib.Required(doc.DocType) {
		if _, ok := doc.Field(def.Canonical); !ok {
			allCritical = false
			break
		}
	}
	if allCritical {
		conf += criticalBonus
	}

	return clamp01(conf)
}

func clamp01(f float64) float64 {
	return math.Min(1, math.Max(0, f))
}

// zeroIfNil treats an absent optional amount as zero in arithmetic checks.
func zeroIfNil(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func accountNAV(doc *model.ExtractedDocument) *float64 {
	if doc.CapitalAccount == nil {
		return nil
	}
	return doc.CapitalAccount.EndingBalance
}

func reportNAV(doc *model.ExtractedDocument) *float64 {
	if doc.Report == nil {
		return nil
	}
	return doc.Report.NAV
}
